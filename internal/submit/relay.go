package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Zuo-Peng/framechat/internal/dres"
	"github.com/Zuo-Peng/framechat/internal/logging"
)

// Judge is the subset of the DRES client the relay needs.
type Judge interface {
	Session(ctx context.Context) (string, error)
	ActiveEvaluation(ctx context.Context, session string) (string, error)
	Submit(ctx context.Context, session, evaluationID string, body dres.SubmitBody) (*dres.SubmitResult, error)
}

// Judged is published after every submission the judge answered.
type Judged struct {
	VideoID      string    `json:"videoId"`
	Frame        int       `json:"frame"`
	TimestampMs  int64     `json:"timestampMs"`
	Status       string    `json:"status"`
	Verdict      Verdict   `json:"verdict"`
	Description  string    `json:"description"`
	EvaluationID string    `json:"evaluationId"`
	JudgedAt     time.Time `json:"judgedAt"`
}

// Notifier receives judged submissions. Implementations must not block.
type Notifier interface {
	SubmissionJudged(ctx context.Context, j Judged)
}

const (
	sessionCacheKey    = "dres:session"
	evaluationCacheKey = "dres:evaluation"
	defaultCacheTTL    = 5 * time.Minute
)

// Relay implements Backend on top of a DRES judge. The DRES session id and
// active evaluation id are cached; any failure evicts both.
type Relay struct {
	judge    Judge
	cache    *cache.Cache
	notifier Notifier
	log      *logging.Logger
	now      func() time.Time
}

type RelayOption func(*Relay)

func WithNotifier(n Notifier) RelayOption {
	return func(r *Relay) { r.notifier = n }
}

func WithRelayLogger(l *logging.Logger) RelayOption {
	return func(r *Relay) { r.log = l }
}

func WithCacheTTL(ttl time.Duration) RelayOption {
	return func(r *Relay) { r.cache = cache.New(ttl, 2*ttl) }
}

func NewRelay(judge Judge, opts ...RelayOption) *Relay {
	r := &Relay{
		judge: judge,
		cache: cache.New(defaultCacheTTL, 2*defaultCacheTTL),
		log:   logging.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Relay) session(ctx context.Context) (string, error) {
	if v, ok := r.cache.Get(sessionCacheKey); ok {
		return v.(string), nil
	}
	sid, err := r.judge.Session(ctx)
	if err != nil {
		return "", fmt.Errorf("dres session: %w", err)
	}
	r.cache.SetDefault(sessionCacheKey, sid)
	return sid, nil
}

func (r *Relay) evaluation(ctx context.Context, session string) (string, error) {
	if v, ok := r.cache.Get(evaluationCacheKey); ok {
		return v.(string), nil
	}
	id, err := r.judge.ActiveEvaluation(ctx, session)
	if err != nil {
		return "", fmt.Errorf("dres evaluation: %w", err)
	}
	r.cache.SetDefault(evaluationCacheKey, id)
	return id, nil
}

// Evict forgets the cached session and evaluation.
func (r *Relay) Evict() {
	r.cache.Delete(sessionCacheKey)
	r.cache.Delete(evaluationCacheKey)
}

// Submit sends req to DRES and returns the success shape. Errors are returned
// as-is; callers build the failure shape with ErrorResponse.
func (r *Relay) Submit(ctx context.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ms := req.Timestamp()

	res, evalID, err := r.submit(ctx, req, ms)
	if err != nil {
		r.Evict()
		r.log.Error("relay", "submission failed", map[string]interface{}{
			"video_id": req.VideoID, "frame": req.Frame, "timestamp_ms": ms, "error": err,
		})
		return nil, err
	}

	// prefer the verdict string over the bool acceptance flag
	status := StatusField(res.Submission)
	if status == "" && len(res.Status) > 0 {
		_ = json.Unmarshal(res.Status, &status)
	}

	out := &Response{
		Success:      true,
		Status:       status,
		Description:  res.Description,
		SubmissionID: res.ID,
		EvaluationID: evalID,
		Timestamp:    ms,
		VideoID:      req.VideoID,
		Frame:        req.Frame,
		RawResponse:  res.Raw,
	}
	verdict := out.Verdict()

	r.log.Info("relay", "submission judged", map[string]interface{}{
		"video_id": req.VideoID, "frame": req.Frame, "timestamp_ms": ms,
		"status": string(status), "verdict": string(verdict), "description": res.Description,
	})

	if r.notifier != nil {
		r.notifier.SubmissionJudged(ctx, Judged{
			VideoID:      req.VideoID,
			Frame:        req.Frame,
			TimestampMs:  ms,
			Status:       status.Upper(),
			Verdict:      verdict,
			Description:  res.Description,
			EvaluationID: evalID,
			JudgedAt:     r.now(),
		})
	}
	return out, nil
}

func (r *Relay) submit(ctx context.Context, req *Request, ms int64) (*dres.SubmitResult, string, error) {
	sid, err := r.session(ctx)
	if err != nil {
		return nil, "", err
	}
	evalID, err := r.evaluation(ctx, sid)
	if err != nil {
		return nil, "", err
	}

	body := dres.KIS(req.VideoID, ms)
	if q := strings.TrimSpace(req.Question); q != "" {
		body = dres.QA(q, req.VideoID, ms)
	}

	res, err := r.judge.Submit(ctx, sid, evalID, body)
	if err != nil {
		return nil, evalID, err
	}
	return res, evalID, nil
}
