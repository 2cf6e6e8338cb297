package submit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

func TestHTTPBackend_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/submit", r.URL.Path)
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "L01_V001", req.VideoID)
		assert.Equal(t, 300, req.Frame)
		require.NotNil(t, req.TimestampMs)
		assert.Equal(t, int64(10000), *req.TimestampMs)

		w.Write([]byte(`{"success":true,"status":true,"description":"Submission correct!","videoId":"L01_V001","frame":300,"timestamp":10000}`))
	}))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL+"/", srv.Client())
	resp, err := b.Submit(context.Background(), &Request{VideoID: "L01_V001", Frame: 300, FPS: 30, TimestampMs: ms(10000)})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, StatusField("TRUE"), resp.Status)
	assert.Equal(t, VerdictCorrect, resp.Verdict())
}

func TestHTTPBackend_ErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want string
	}{
		{name: "error field", code: 500, body: `{"success":false,"status":"ERROR","error":"No active evaluation found.","description":"Submission failed: No active evaluation found."}`, want: "No active evaluation found."},
		{name: "description only", code: 500, body: `{"description":"judge offline"}`, want: "judge offline"},
		{name: "nothing", code: 502, body: `{}`, want: "Unknown error"},
		{name: "not json", code: 502, body: `<html>Bad Gateway</html>`, want: "Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPBackend(srv.URL, nil).Submit(context.Background(), &Request{VideoID: "v", Frame: 1})
			var re *ResponseError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.code, re.Code)
			assert.Equal(t, tt.want, re.Error())
			assert.ErrorIs(t, err, apperrors.ErrFetch)
		})
	}
}

func TestHTTPBackend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPBackend(url, nil).Submit(context.Background(), &Request{VideoID: "v"})
	assert.ErrorIs(t, err, apperrors.ErrFetch)
}
