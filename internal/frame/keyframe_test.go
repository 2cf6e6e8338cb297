package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

func TestParseKeyframePath(t *testing.T) {
	tests := []struct {
		path      string
		wantVideo string
		wantName  string
		wantIndex int
	}{
		{path: "data/keyframes/L01_V001/000120.webp", wantVideo: "L01_V001", wantName: "000120", wantIndex: 120},
		{path: "../data/keyframes/L01_V001/frame_000045.png", wantVideo: "L01_V001", wantName: "000045", wantIndex: 45},
		{path: "/abs/L22_V012/key2016.jpg", wantVideo: "L22_V012", wantName: "2016", wantIndex: 2016},
		{path: `C:\kf\L03_V004\frame_7.WEBP`, wantVideo: "L03_V004", wantName: "7", wantIndex: 7},
		{path: "L05_V010/00030", wantVideo: "L05_V010", wantName: "00030", wantIndex: 30},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			kf, err := ParseKeyframePath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.path, kf.Path)
			assert.Equal(t, tt.wantVideo, kf.VideoID)
			assert.Equal(t, tt.wantName, kf.Name)
			assert.Equal(t, tt.wantIndex, kf.Index)
		})
	}
}

func TestParseKeyframePath_Invalid(t *testing.T) {
	for _, p := range []string{"", "000120.webp", "L01_V001/cover.webp", "L01_V001/-3.png"} {
		t.Run(p, func(t *testing.T) {
			_, err := ParseKeyframePath(p)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestYouTubeHelpers(t *testing.T) {
	assert.Equal(t, "dQw4w9WgXcQ", YouTubeID("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Equal(t, "abc", YouTubeID("https://youtube.com/watch?feature=share&v=abc#t=3"))
	assert.Equal(t, "", YouTubeID("https://youtu.be/abc"))

	assert.Equal(t, "https://www.youtube.com/watch?v=abc&t=4s", WatchURLAt("abc", 4.8))
	assert.Equal(t, "https://www.youtube.com/watch?v=abc&t=0s", WatchURLAt("abc", -1))
	assert.Equal(t, "https://www.youtube.com/embed/abc?start=4&enablejsapi=1&autoplay=1&rel=0", EmbedURL("abc", 4.8))
}
