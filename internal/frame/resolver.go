package frame

import (
	"context"
	"fmt"
	"math"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

// Frame is a keyframe resolved against its video.
type Frame struct {
	Keyframe
	FPS              float64 `json:"fps"`
	TimestampSeconds float64 `json:"timestampSeconds"`
	WatchURL         string  `json:"watchUrl"`
	YouTubeID        string  `json:"youtubeId"`
}

// InitialPosition is the live position before the player reports anything:
// the keyframe itself at its own timestamp.
func (f *Frame) InitialPosition() Position {
	return Position{FrameIndex: f.Index, TimestampMs: int64(math.Floor(f.TimestampSeconds*1000 + floorEps))}
}

// LinkAt is the watch URL positioned at seconds.
func (f *Frame) LinkAt(seconds float64) string {
	if f.YouTubeID == "" {
		return f.WatchURL
	}
	return WatchURLAt(f.YouTubeID, seconds)
}

type Resolver struct {
	src Source
}

func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// Resolve parses imagePath and looks up the video's watch URL and fps.
func (r *Resolver) Resolve(ctx context.Context, imagePath string) (*Frame, error) {
	kf, err := ParseKeyframePath(imagePath)
	if err != nil {
		return nil, err
	}

	md, err := r.src.Metadata(ctx, kf.VideoID)
	if err != nil {
		return nil, fmt.Errorf("metadata for %s: %w", kf.VideoID, err)
	}
	table, err := r.src.FPS(ctx)
	if err != nil {
		return nil, fmt.Errorf("fps table: %w", err)
	}
	fps, ok := table[kf.VideoID]
	if !ok {
		return nil, fmt.Errorf("%w: no fps entry for %s", apperrors.ErrNotFound, kf.VideoID)
	}
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return nil, fmt.Errorf("%w: invalid fps %v for %s", apperrors.ErrFetch, fps, kf.VideoID)
	}

	return &Frame{
		Keyframe:         kf,
		FPS:              fps,
		TimestampSeconds: float64(kf.Index) / fps,
		WatchURL:         md.WatchURL,
		YouTubeID:        YouTubeID(md.WatchURL),
	}, nil
}
