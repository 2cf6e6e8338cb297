package submit

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

const DefaultFPS = 25.0

var validate = validator.New()

// Request asks the relay to submit one frame. TimestampMs is optional; when
// absent it is derived from Frame and FPS.
type Request struct {
	VideoID     string  `json:"videoId" validate:"required"`
	Frame       int     `json:"frame" validate:"min=0"`
	FPS         float64 `json:"fps,omitempty" validate:"omitempty,gt=0"`
	TimestampMs *int64  `json:"timestampMs,omitempty" validate:"omitempty,min=0"`
	Question    string  `json:"question,omitempty"`
}

// Validate checks the request, wrapping failures in apperrors.ErrInvalidInput.
func (r *Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return nil
}

// Rate is FPS with the default applied.
func (r *Request) Rate() float64 {
	if r.FPS <= 0 {
		return DefaultFPS
	}
	return r.FPS
}

// Timestamp is the answer time in milliseconds: TimestampMs when given,
// otherwise int(frame / fps * 1000).
func (r *Request) Timestamp() int64 {
	if r.TimestampMs != nil {
		return *r.TimestampMs
	}
	return int64(math.Floor(float64(r.Frame) / r.Rate() * 1000))
}

// Response is the relay reply for both outcomes. On failure Success is false,
// Status is "ERROR" and Error carries the message.
type Response struct {
	Success      bool                   `json:"success"`
	Status       StatusField            `json:"status"`
	Description  string                 `json:"description"`
	SubmissionID string                 `json:"submissionId,omitempty"`
	EvaluationID string                 `json:"evaluationId,omitempty"`
	Timestamp    int64                  `json:"timestamp"`
	VideoID      string                 `json:"videoId"`
	Frame        int                    `json:"frame"`
	Error        string                 `json:"error,omitempty"`
	RawResponse  map[string]interface{} `json:"raw_response,omitempty"`
}

// Verdict classifies the judge reply carried by r.
func (r *Response) Verdict() Verdict {
	return Classify(r.Description, r.Status)
}

// ErrorResponse builds the failure shape for req.
func ErrorResponse(req *Request, err error) *Response {
	return &Response{
		Success:     false,
		Status:      "ERROR",
		Error:       err.Error(),
		Description: "Submission failed: " + err.Error(),
		VideoID:     req.VideoID,
		Frame:       req.Frame,
		Timestamp:   req.Timestamp(),
	}
}
