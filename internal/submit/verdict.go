package submit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Verdict string

const (
	VerdictCorrect       Verdict = "CORRECT"
	VerdictWrong         Verdict = "WRONG"
	VerdictIndeterminate Verdict = "INDETERMINATE"
	VerdictPending       Verdict = "PENDING"
	VerdictUnknown       Verdict = "UNKNOWN"
)

// Label is the short text shown next to a judged submission.
func (v Verdict) Label() string {
	switch v {
	case VerdictCorrect:
		return "✅ CORRECT"
	case VerdictWrong:
		return "❌ WRONG"
	case VerdictIndeterminate:
		return "❓ INDETERMINATE"
	case VerdictPending:
		return "⏳ PENDING"
	default:
		return "📝 UNKNOWN"
	}
}

// StatusField is the judge's status, which arrives as a string, a bool or
// null. Bools become "TRUE"/"FALSE"; null becomes "".
type StatusField string

func (s *StatusField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case bytes.Equal(data, []byte("true")):
		*s = "TRUE"
	case bytes.Equal(data, []byte("false")):
		*s = "FALSE"
	default:
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			// numbers and the like are kept verbatim and classify as UNKNOWN
			*s = StatusField(string(data))
			return nil
		}
		*s = StatusField(str)
	}
	return nil
}

func (s StatusField) Upper() string {
	return strings.ToUpper(strings.TrimSpace(string(s)))
}

// Classify maps a judge reply to a verdict. Keywords in the description take
// precedence over the status field; "incorrect" contains "correct", so the
// negative keywords are checked first.
func Classify(description string, status StatusField) Verdict {
	d := strings.ToLower(description)
	switch {
	case strings.Contains(d, "wrong"), strings.Contains(d, "incorrect"), strings.Contains(d, "error"):
		return VerdictWrong
	case strings.Contains(d, "correct"):
		return VerdictCorrect
	}

	switch status.Upper() {
	case "CORRECT", "TRUE":
		return VerdictCorrect
	case "WRONG", "FALSE":
		return VerdictWrong
	case "INDETERMINATE":
		return VerdictIndeterminate
	case "PENDING":
		return VerdictPending
	default:
		return VerdictUnknown
	}
}

// describeStatus renders the raw status for the UNKNOWN label.
func describeStatus(s StatusField) string {
	if s.Upper() == "" {
		return "UNKNOWN"
	}
	return fmt.Sprintf("Status: %s", s.Upper())
}
