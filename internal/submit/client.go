package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

// Backend performs one submission.
type Backend interface {
	Submit(ctx context.Context, req *Request) (*Response, error)
}

// ResponseError is a non-200 relay reply.
type ResponseError struct {
	Code     int
	Message  string
	Response *Response
}

func (e *ResponseError) Error() string {
	return e.Message
}

func (e *ResponseError) Unwrap() error {
	return apperrors.ErrFetch
}

// HTTPBackend posts requests to a relay's /api/submit.
type HTTPBackend struct {
	url    string
	client *http.Client
}

func NewHTTPBackend(baseURL string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPBackend{url: strings.TrimRight(baseURL, "/") + "/api/submit", client: client}
}

func (b *HTTPBackend) Submit(ctx context.Context, req *Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode submit request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read submit reply: %v", apperrors.ErrFetch, err)
	}

	var out Response
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode != http.StatusOK {
		msg := "Unknown error"
		switch {
		case decodeErr == nil && out.Error != "":
			msg = out.Error
		case decodeErr == nil && out.Description != "":
			msg = out.Description
		}
		re := &ResponseError{Code: resp.StatusCode, Message: msg}
		if decodeErr == nil {
			re.Response = &out
		}
		return nil, re
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode submit reply: %v", apperrors.ErrFetch, decodeErr)
	}
	return &out, nil
}
