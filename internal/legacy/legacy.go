// Package legacy reads the chat history the browser client kept in
// localStorage under "chatHistory": a JSON object of
// {id: {name, messages}} where messages is the chat panel's innerHTML.
package legacy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
	"github.com/Zuo-Peng/framechat/internal/chat"
	"github.com/Zuo-Peng/framechat/internal/frame"
)

const (
	classUser   = "user-message"
	classSystem = "system-message"
	classImage  = "chat-image-message"
)

type record struct {
	Name     string `json:"name"`
	Messages string `json:"messages"`
}

var (
	videoIDRe  = regexp.MustCompile(`Video ID:\s*(\S+)`)
	keyframeRe = regexp.MustCompile(`Keyframe:\s*(\S+)`)
	chatIDRe   = regexp.MustCompile(`^chat_(\d{10,})$`)
)

// ParseFile reads a chatHistory dump from path.
func ParseFile(path string) (*chat.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse converts a chatHistory dump into a snapshot. Sessions keep the order
// they had in the dump and the default session is always present. The dump
// may also be the JSON string that localStorage.getItem returns.
func Parse(data []byte) (*chat.Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("%w: chat history string: %v", apperrors.ErrCorrupt, err)
		}
		data = []byte(inner)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: chat history: %v", apperrors.ErrCorrupt, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: chat history is not an object", apperrors.ErrCorrupt)
	}

	snap := &chat.Snapshot{ActiveID: chat.DefaultSessionID}
	hasDefault := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: chat history: %v", apperrors.ErrCorrupt, err)
		}
		id, _ := tok.(string)

		var rec record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("%w: chat %q: %v", apperrors.ErrCorrupt, id, err)
		}

		created := createdAt(id)
		msgs, err := ParseMarkup(rec.Messages, created)
		if err != nil {
			return nil, fmt.Errorf("chat %q: %w", id, err)
		}

		name := rec.Name
		if id == chat.DefaultSessionID {
			hasDefault = true
			name = chat.DefaultSessionName
		}
		snap.Sessions = append(snap.Sessions, chat.Session{
			ID:        id,
			Name:      name,
			Messages:  msgs,
			CreatedAt: created,
		})
	}

	if !hasDefault {
		def := chat.Session{ID: chat.DefaultSessionID, Name: chat.DefaultSessionName, Messages: []chat.Message{}}
		snap.Sessions = append([]chat.Session{def}, snap.Sessions...)
	}
	return snap, nil
}

// createdAt recovers the creation time encoded in browser ids (chat_<unix ms>).
func createdAt(id string) time.Time {
	m := chatIDRe.FindStringSubmatch(id)
	if m == nil {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// ParseMarkup turns the chat panel markup into structured messages. Elements
// that are not one of the known message kinds are skipped.
func ParseMarkup(markup string, at time.Time) ([]chat.Message, error) {
	msgs := []chat.Message{}
	if strings.TrimSpace(markup) == "" {
		return msgs, nil
	}

	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: chat markup: %v", apperrors.ErrCorrupt, err)
	}

	for _, n := range nodes {
		if n.Type != html.ElementNode {
			continue
		}
		classes := strings.Fields(attr(n, "class"))
		switch {
		case hasClass(classes, classImage):
			msgs = append(msgs, imageMessage(n, at))
		case hasClass(classes, classUser):
			msgs = append(msgs, chat.Message{Role: chat.RoleUser, Text: textContent(n), CreatedAt: at})
		case hasClass(classes, classSystem):
			msgs = append(msgs, chat.Message{Role: chat.RoleSystem, Text: textContent(n), CreatedAt: at})
		}
	}
	return msgs, nil
}

func imageMessage(n *html.Node, at time.Time) chat.Message {
	img := &chat.ImageRef{}
	if el := find(n, atom.Img); el != nil {
		img.Path = attr(el, "src")
		img.Keyframe = attr(el, "data-keyframe")
	}

	info := textContent(n)
	if m := videoIDRe.FindStringSubmatch(info); m != nil {
		img.VideoID = m[1]
	}
	if m := keyframeRe.FindStringSubmatch(info); m != nil && img.Keyframe == "" {
		img.Keyframe = m[1]
	}
	if img.VideoID == "" {
		if kf, err := frame.ParseKeyframePath(img.Path); err == nil {
			img.VideoID = kf.VideoID
		}
	}
	return chat.Message{Role: chat.RoleUser, Image: img, CreatedAt: at}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(classes []string, want string) bool {
	for _, c := range classes {
		if c == want {
			return true
		}
	}
	return false
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

// textContent joins the text under n, collapsing whitespace and treating
// <br> as a line break.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	var lines []string
	for _, l := range strings.Split(b.String(), "\n") {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}
