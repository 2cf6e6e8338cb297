package frame

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

// Keyframe identifies one extracted frame image. VideoID is the parent
// directory name and Index the frame number encoded in the file name.
type Keyframe struct {
	Path    string `json:"path"`
	VideoID string `json:"videoId"`
	Name    string `json:"keyframe"` // file name without prefixes and extension, e.g. "000120"
	Index   int    `json:"frameIndex"`
}

var imageExts = []string{".webp", ".png", ".jpg", ".jpeg"}

// ParseKeyframePath splits an image path such as
// "data/keyframes/L01_V001/frame_000120.webp" into video id and frame index.
// Both "/" and "\" separators are accepted.
func ParseKeyframePath(p string) (Keyframe, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	clean = strings.TrimRight(clean, "/")
	if clean == "" {
		return Keyframe{}, fmt.Errorf("%w: empty keyframe path", apperrors.ErrInvalidInput)
	}

	dir, file := path.Split(clean)
	video := path.Base(strings.TrimRight(dir, "/"))
	if dir == "" || video == "" || video == "." || video == "/" {
		return Keyframe{}, fmt.Errorf("%w: keyframe path %q has no video directory", apperrors.ErrInvalidInput, p)
	}

	name := file
	for _, ext := range imageExts {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	name = strings.TrimPrefix(name, "frame_")
	name = strings.TrimPrefix(name, "key")

	idx, err := strconv.Atoi(name)
	if err != nil || idx < 0 {
		return Keyframe{}, fmt.Errorf("%w: keyframe file %q has no frame number", apperrors.ErrInvalidInput, file)
	}

	return Keyframe{Path: p, VideoID: video, Name: name, Index: idx}, nil
}
