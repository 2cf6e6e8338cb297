package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zuo-Peng/framechat/internal/chat"
)

// File keeps the snapshot in a single JSON document.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Load(_ context.Context) (*chat.Snapshot, error) {
	payload, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read chat store: %w", err)
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, nil
	}
	return chat.UnmarshalSnapshot(payload)
}

// Save writes to a temporary file next to the target and renames it into
// place, so a crash never leaves a half-written store behind.
func (f *File) Save(_ context.Context, snap *chat.Snapshot) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chat store dir: %w", err)
	}
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chat store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".chats-*.json")
	if err != nil {
		return fmt.Errorf("write chat store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write chat store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write chat store: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("write chat store: %w", err)
	}
	return nil
}

func (f *File) Close() error {
	return nil
}
