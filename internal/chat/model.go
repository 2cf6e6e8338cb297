package chat

import "time"

const (
	DefaultSessionID   = "default"
	DefaultSessionName = "Default Chat"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// ImageRef points at a keyframe picked from the grid.
type ImageRef struct {
	Path     string `json:"path" yaml:"path"`
	VideoID  string `json:"video_id" yaml:"video_id"`
	Keyframe string `json:"keyframe" yaml:"keyframe"`
}

type Message struct {
	Role      Role      `json:"role" yaml:"role"`
	Text      string    `json:"text,omitempty" yaml:"text,omitempty"`
	Image     *ImageRef `json:"image,omitempty" yaml:"image,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type Session struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Messages  []Message `json:"messages" yaml:"messages"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// clone returns a deep copy so callers cannot mutate store state.
func (s Session) clone() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		if m.Image != nil {
			img := *m.Image
			m.Image = &img
		}
		out.Messages[i] = m
	}
	return out
}

// LastImage returns the most recent image message of the session.
func (s Session) LastImage() (ImageRef, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if img := s.Messages[i].Image; img != nil {
			return *img, true
		}
	}
	return ImageRef{}, false
}
