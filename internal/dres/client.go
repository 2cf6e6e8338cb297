package dres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

const (
	defaultTimeout = 10 * time.Second
	submitTimeout  = 15 * time.Second
)

var ErrNoCredentials = fmt.Errorf("%w: no DRES session id and no username/password", apperrors.ErrInvalidInput)

// Config holds the DRES endpoint and credentials. A non-empty SessionID is
// used as-is and skips login.
type Config struct {
	BaseURL   string
	SessionID string
	Username  string
	Password  string
	Timeout   time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	submit *http.Client
}

func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	st := submitTimeout
	if cfg.Timeout > st {
		st = cfg.Timeout
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		submit: &http.Client{Timeout: st},
	}
}

// Evaluation is one entry of the client evaluation list.
type Evaluation struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status"`
}

// Answer is one DRES answer. KIS answers carry MediaItemName/Start/End,
// QA answers carry Text.
type Answer struct {
	MediaItemName string `json:"mediaItemName,omitempty"`
	Start         *int64 `json:"start,omitempty"`
	End           *int64 `json:"end,omitempty"`
	Text          string `json:"text,omitempty"`
}

type AnswerSet struct {
	Answers []Answer `json:"answers"`
}

type SubmitBody struct {
	AnswerSets []AnswerSet `json:"answerSets"`
}

// KIS builds a known-item answer pointing at a single instant of a video.
func KIS(videoID string, ms int64) SubmitBody {
	start, end := ms, ms
	return SubmitBody{AnswerSets: []AnswerSet{{Answers: []Answer{{MediaItemName: videoID, Start: &start, End: &end}}}}}
}

// QA builds a textual answer "QA-<question>-<videoId>-<ms>".
func QA(question, videoID string, ms int64) SubmitBody {
	text := fmt.Sprintf("QA-%s-%s-%d", question, videoID, ms)
	return SubmitBody{AnswerSets: []AnswerSet{{Answers: []Answer{{Text: text}}}}}
}

// SubmitResult is the DRES reply. Status has been seen both as a bool and as
// a verdict string, so it is kept raw.
type SubmitResult struct {
	Status      json.RawMessage        `json:"status,omitempty"`
	Submission  string                 `json:"submission,omitempty"`
	Description string                 `json:"description,omitempty"`
	ID          string                 `json:"submissionId,omitempty"`
	Raw         map[string]interface{} `json:"-"`
}

// StatusError is returned for non-2xx DRES replies.
type StatusError struct {
	Op          string
	Code        int
	Description string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dres %s: HTTP %d: %s", e.Op, e.Code, e.Description)
}

func (e *StatusError) Unwrap() error {
	return apperrors.ErrFetch
}

// Session returns the configured session id or logs in to obtain one.
func (c *Client) Session(ctx context.Context) (string, error) {
	if c.cfg.SessionID != "" {
		return c.cfg.SessionID, nil
	}
	return c.Login(ctx)
}

// Login authenticates with username/password.
func (c *Client) Login(ctx context.Context) (string, error) {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return "", ErrNoCredentials
	}
	body := map[string]string{"username": c.cfg.Username, "password": c.cfg.Password}

	var out struct {
		SessionID  string `json:"sessionId"`
		SessionID2 string `json:"sessionID"`
		SessionID3 string `json:"session_id"`
	}
	if err := c.do(ctx, c.http, "login", http.MethodPost, "/api/v2/login", nil, body, &out); err != nil {
		return "", err
	}
	for _, sid := range []string{out.SessionID, out.SessionID2, out.SessionID3} {
		if sid != "" {
			return sid, nil
		}
	}
	return "", fmt.Errorf("%w: dres login: reply carries no session id", apperrors.ErrFetch)
}

// Evaluations lists the evaluations visible to session.
func (c *Client) Evaluations(ctx context.Context, session string) ([]Evaluation, error) {
	var list []Evaluation
	q := url.Values{"session": {session}}
	if err := c.do(ctx, c.http, "evaluation list", http.MethodGet, "/api/v2/client/evaluation/list", q, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ActiveEvaluation returns the first evaluation whose status is ACTIVE.
func (c *Client) ActiveEvaluation(ctx context.Context, session string) (string, error) {
	list, err := c.Evaluations(ctx, session)
	if err != nil {
		return "", err
	}
	for _, e := range list {
		if strings.EqualFold(e.Status, "ACTIVE") {
			return e.ID, nil
		}
	}
	return "", fmt.Errorf("%w: no active evaluation", apperrors.ErrNotFound)
}

// Submit posts answers to an evaluation.
func (c *Client) Submit(ctx context.Context, session, evaluationID string, body SubmitBody) (*SubmitResult, error) {
	var raw map[string]interface{}
	q := url.Values{"session": {session}}
	p := "/api/v2/submit/" + url.PathEscape(evaluationID)
	if err := c.do(ctx, c.submit, "submit", http.MethodPost, p, q, body, &raw); err != nil {
		return nil, err
	}

	res := &SubmitResult{Raw: raw}
	// re-decode the typed fields from the same map
	buf, _ := json.Marshal(raw)
	if err := json.Unmarshal(buf, res); err != nil {
		return nil, fmt.Errorf("%w: decode dres submit reply: %v", apperrors.ErrFetch, err)
	}
	if res.ID == "" {
		if id, ok := raw["id"].(string); ok {
			res.ID = id
		}
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, op, method, p string, q url.Values, in, out interface{}) error {
	u := c.cfg.BaseURL + p
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("dres %s: encode: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%w: dres %s: %v", apperrors.ErrFetch, op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: dres %s: %v", apperrors.ErrFetch, op, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: dres %s: read reply: %v", apperrors.ErrFetch, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, Code: resp.StatusCode, Description: describe(payload)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: dres %s: decode reply: %v", apperrors.ErrFetch, op, err)
	}
	return nil
}

// describe pulls the description out of a DRES error body, falling back to
// the body text.
func describe(payload []byte) string {
	var e struct {
		Description string `json:"description"`
	}
	if json.Unmarshal(payload, &e) == nil && e.Description != "" {
		return e.Description
	}
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return "empty reply"
	}
	return text
}

// IsAuthFailure reports whether err is a DRES rejection of the session.
func IsAuthFailure(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden)
}
