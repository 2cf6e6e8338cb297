package frame

import (
	"fmt"
	"math"
	"regexp"
)

var youtubeIDRe = regexp.MustCompile(`[?&]v=([^&#]*)`)

// YouTubeID extracts the v= parameter of a watch URL. It returns "" when the
// URL carries none.
func YouTubeID(watchURL string) string {
	m := youtubeIDRe.FindStringSubmatch(watchURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// WatchURLAt links to the video at the given offset, rounded down to seconds.
func WatchURLAt(id string, seconds float64) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%ds", id, wholeSeconds(seconds))
}

func EmbedURL(id string, seconds float64) string {
	return fmt.Sprintf("https://www.youtube.com/embed/%s?start=%d&enablejsapi=1&autoplay=1&rel=0", id, wholeSeconds(seconds))
}

func wholeSeconds(s float64) int {
	if s < 0 || math.IsNaN(s) {
		return 0
	}
	return int(math.Floor(s))
}
