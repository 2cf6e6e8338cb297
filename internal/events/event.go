package events

import "time"

const (
	SubjectSubmissionJudged = "events.submission.judged"
	TypeSubmissionJudged    = "SUBMISSION_JUDGED"
)

// BaseEvent is the envelope of every published event.
type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}
