package submit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		description string
		status      StatusField
		want        Verdict
	}{
		{name: "incorrect beats correct status", description: "Submission incorrect", status: "CORRECT", want: VerdictWrong},
		{name: "wrong keyword", description: "That is WRONG", status: "", want: VerdictWrong},
		{name: "error keyword", description: "internal error", status: "TRUE", want: VerdictWrong},
		{name: "correct keyword", description: "Submission correct!", status: "WRONG", want: VerdictCorrect},
		{name: "status correct", description: "", status: "correct", want: VerdictCorrect},
		{name: "status true", description: "accepted", status: "TRUE", want: VerdictCorrect},
		{name: "status false", description: "", status: "FALSE", want: VerdictWrong},
		{name: "status wrong", description: "", status: "Wrong", want: VerdictWrong},
		{name: "indeterminate", description: "", status: "INDETERMINATE", want: VerdictIndeterminate},
		{name: "pending", description: "awaiting judgement", status: "PENDING", want: VerdictPending},
		{name: "empty", description: "", status: "", want: VerdictUnknown},
		{name: "other", description: "", status: "UNDECIDABLE", want: VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.description, tt.status))
		})
	}
}

func TestStatusField_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want StatusField
	}{
		{in: `{"status":"CORRECT"}`, want: "CORRECT"},
		{in: `{"status":true}`, want: "TRUE"},
		{in: `{"status":false}`, want: "FALSE"},
		{in: `{"status":null}`, want: ""},
		{in: `{}`, want: ""},
		{in: `{"status":3}`, want: "3"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var v struct {
				Status StatusField `json:"status"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.in), &v))
			assert.Equal(t, tt.want, v.Status)
		})
	}
}

func TestVerdictLabel(t *testing.T) {
	assert.Equal(t, "✅ CORRECT", VerdictCorrect.Label())
	assert.Equal(t, "❌ WRONG", VerdictWrong.Label())
	assert.Equal(t, "📝 UNKNOWN", Verdict("x").Label())
}
