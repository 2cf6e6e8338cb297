package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/framechat/internal/frame"
	"github.com/Zuo-Peng/framechat/internal/submit"
)

type backendFunc func(ctx context.Context, req *submit.Request) (*submit.Response, error)

func (f backendFunc) Submit(ctx context.Context, req *submit.Request) (*submit.Response, error) {
	return f(ctx, req)
}

func newTestServer(t *testing.T, backend submit.Backend) *Server {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "metadata"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "index"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "metadata", "L01_V001.json"), []byte(`{"watch_url":"https://www.youtube.com/watch?v=abc"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index", "fps.json"), []byte(`{"L01_V001":25}`), 0o644))

	return New(Deps{
		Backend:  backend,
		Resolver: frame.NewResolver(frame.NewDirSource(root)),
		DataDir:  root,
	})
}

func do(t *testing.T, s *Server, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	if len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, &out), string(body))
	}
	return resp.StatusCode, out
}

func postJSON(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := do(t, s, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestSubmit_Success(t *testing.T) {
	var got *submit.Request
	s := newTestServer(t, backendFunc(func(_ context.Context, req *submit.Request) (*submit.Response, error) {
		got = req
		return &submit.Response{
			Success: true, Status: "WRONG", Description: "Submission incorrect",
			Timestamp: req.Timestamp(), VideoID: req.VideoID, Frame: req.Frame,
		}, nil
	}))

	code, body := do(t, s, postJSON(`{"videoId":"L01_V001","frame":120}`))
	require.Equal(t, http.StatusOK, code, "a wrong verdict is still a successful relay")
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "WRONG", body["status"])
	assert.EqualValues(t, 4800, body["timestamp"])

	require.NotNil(t, got)
	assert.Nil(t, got.TimestampMs)
	assert.Equal(t, 25.0, got.Rate())
}

func TestSubmit_BackendFailure(t *testing.T) {
	s := newTestServer(t, backendFunc(func(context.Context, *submit.Request) (*submit.Response, error) {
		return nil, errors.New("No active evaluation found.")
	}))

	code, body := do(t, s, postJSON(`{"videoId":"L01_V001","frame":300,"fps":30,"timestampMs":10040}`))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "ERROR", body["status"])
	assert.Equal(t, "No active evaluation found.", body["error"])
	assert.Equal(t, "Submission failed: No active evaluation found.", body["description"])
	assert.Equal(t, "L01_V001", body["videoId"])
	assert.EqualValues(t, 300, body["frame"])
	assert.EqualValues(t, 10040, body["timestamp"])
}

func TestSubmit_InvalidBody(t *testing.T) {
	s := newTestServer(t, backendFunc(func(context.Context, *submit.Request) (*submit.Response, error) {
		t.Error("backend must not be called")
		return nil, nil
	}))

	for _, body := range []string{`{"frame":1}`, `{"videoId":"v","frame":-4}`, `{not json`} {
		code, out := do(t, s, postJSON(body))
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.Equal(t, "ERROR", out["status"], body)
		assert.Equal(t, false, out["success"], body)
	}
}

func TestFrames(t *testing.T) {
	s := newTestServer(t, nil)

	code, body := do(t, s, httptest.NewRequest(http.MethodGet, "/api/frames?path=keyframes/L01_V001/000120.webp", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "L01_V001", body["videoId"])
	assert.EqualValues(t, 120, body["frameIndex"])
	assert.InDelta(t, 4.8, body["timestampSeconds"], 1e-9)
	assert.Equal(t, "abc", body["youtubeId"])
	assert.Equal(t, "https://www.youtube.com/watch?v=abc&t=4s", body["watchUrlAt"])
	initial := body["initial"].(map[string]interface{})
	assert.EqualValues(t, 4800, initial["timestampMs"])

	code, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/api/frames?path=keyframes/L09_V009/1.webp", nil))
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/api/frames?path=oops", nil))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/api/frames", nil))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStaticData(t *testing.T) {
	s := newTestServer(t, nil)
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/data/index/fps.json", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"L01_V001":25}`, string(body))
}
