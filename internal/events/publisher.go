package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Zuo-Peng/framechat/internal/logging"
	"github.com/Zuo-Peng/framechat/internal/submit"
)

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// Publisher sends events to NATS subjects.
type Publisher struct {
	conn Conn
}

// Connect dials url. The connection retries in the background, so a NATS
// server that comes up later is picked up without a restart.
func Connect(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("framechat"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &Publisher{conn: nc}, nil
}

func NewPublisher(conn Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) Publish(_ context.Context, subject string, evt BaseEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.conn.Publish(subject, data)
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// SubmissionNotifier publishes judged submissions. A nil publisher makes it a
// no-op so the relay runs without NATS.
type SubmissionNotifier struct {
	publisher *Publisher
	log       *logging.Logger
}

func NewSubmissionNotifier(publisher *Publisher, log *logging.Logger) *SubmissionNotifier {
	if log == nil {
		log = logging.Nop()
	}
	return &SubmissionNotifier{publisher: publisher, log: log}
}

// SubmissionJudged implements submit.Notifier.
func (n *SubmissionNotifier) SubmissionJudged(ctx context.Context, j submit.Judged) {
	if n.publisher == nil {
		return
	}

	evt := BaseEvent{
		Type: TypeSubmissionJudged,
		Data: map[string]interface{}{
			"video_id":      j.VideoID,
			"frame":         j.Frame,
			"timestamp_ms":  j.TimestampMs,
			"status":        j.Status,
			"verdict":       string(j.Verdict),
			"description":   j.Description,
			"evaluation_id": j.EvaluationID,
		},
		OccurredAt: j.JudgedAt,
	}

	if err := n.publisher.Publish(ctx, SubjectSubmissionJudged, evt); err != nil {
		n.log.Error("EVENTS", "Failed to publish SUBMISSION_JUDGED event", map[string]interface{}{"error": err.Error()})
	}
}
