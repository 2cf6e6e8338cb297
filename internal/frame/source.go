package frame

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

// Metadata is the per-video document under metadata/<videoId>.json.
type Metadata struct {
	WatchURL    string `json:"watch_url"`
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Length      int    `json:"length,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`
}

// FPSTable maps video ids to their frame rate, as stored in index/fps.json.
type FPSTable map[string]float64

// Source provides video metadata and the fps table.
type Source interface {
	Metadata(ctx context.Context, videoID string) (*Metadata, error)
	FPS(ctx context.Context) (FPSTable, error)
}

// DirSource reads the data directory directly.
type DirSource struct {
	root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

func (s *DirSource) Metadata(_ context.Context, videoID string) (*Metadata, error) {
	var md Metadata
	if err := readJSONFile(filepath.Join(s.root, "metadata", videoID+".json"), &md); err != nil {
		return nil, err
	}
	return &md, nil
}

func (s *DirSource) FPS(_ context.Context) (FPSTable, error) {
	var table FPSTable
	if err := readJSONFile(filepath.Join(s.root, "index", "fps.json"), &table); err != nil {
		return nil, err
	}
	return table, nil
}

func readJSONFile(p string, v interface{}) error {
	payload, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", apperrors.ErrNotFound, p)
		}
		return fmt.Errorf("%w: read %s: %v", apperrors.ErrFetch, p, err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", apperrors.ErrFetch, p, err)
	}
	return nil
}

// HTTPSource fetches the same documents from a base URL, e.g. the relay's
// /data mount.
type HTTPSource struct {
	base   string
	client *http.Client
}

func NewHTTPSource(base string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{base: strings.TrimRight(base, "/"), client: client}
}

func (s *HTTPSource) Metadata(ctx context.Context, videoID string) (*Metadata, error) {
	var md Metadata
	if err := s.getJSON(ctx, "/metadata/"+url.PathEscape(videoID)+".json", &md); err != nil {
		return nil, err
	}
	return &md, nil
}

func (s *HTTPSource) FPS(ctx context.Context) (FPSTable, error) {
	var table FPSTable
	if err := s.getJSON(ctx, "/index/fps.json", &table); err != nil {
		return nil, err
	}
	return table, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, p string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+p, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", apperrors.ErrFetch, p, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, p)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: GET %s: %s %s", apperrors.ErrFetch, p, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", apperrors.ErrFetch, p, err)
	}
	return nil
}

const fpsCacheKey = "fps"

// CachedSource memoises another Source. Failures are not cached.
type CachedSource struct {
	next  Source
	cache *cache.Cache
}

func NewCachedSource(next Source, ttl time.Duration) *CachedSource {
	return &CachedSource{next: next, cache: cache.New(ttl, 2*ttl)}
}

func (s *CachedSource) Metadata(ctx context.Context, videoID string) (*Metadata, error) {
	key := "metadata:" + videoID
	if v, ok := s.cache.Get(key); ok {
		md := *v.(*Metadata)
		return &md, nil
	}
	md, err := s.next.Metadata(ctx, videoID)
	if err != nil {
		return nil, err
	}
	stored := *md
	s.cache.SetDefault(key, &stored)
	return md, nil
}

func (s *CachedSource) FPS(ctx context.Context) (FPSTable, error) {
	if v, ok := s.cache.Get(fpsCacheKey); ok {
		return v.(FPSTable), nil
	}
	table, err := s.next.FPS(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(fpsCacheKey, table)
	return table, nil
}

// Flush drops everything cached.
func (s *CachedSource) Flush() {
	s.cache.Flush()
}
