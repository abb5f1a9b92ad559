package llm

import (
	"testing"

	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	resp, err := ParseResponse(`{"is_spam":true,"score":0.92,"confidence":0.8,"explanation":"prize scam"}`)
	require.NoError(t, err)
	require.NotNil(t, resp.IsSpam)
	assert.True(t, *resp.IsSpam)
	assert.Equal(t, 0.92, *resp.Score)
	assert.Equal(t, "prize scam", resp.Explanation)
}

func TestParseResponse_Wrapped(t *testing.T) {
	resp, err := ParseResponse("Sure! Here you go:\n```json\n{\"is_spam\":false,\"score\":0.1}\n```")
	require.NoError(t, err)
	assert.False(t, *resp.IsSpam)
	assert.Equal(t, 0.1, *resp.Score)
}

func TestParseResponse_NoJSON(t *testing.T) {
	_, err := ParseResponse("I cannot help with that")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = ParseResponse("{broken")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = ParseResponse("x {not json} y")
	assert.Error(t, err)
}

func TestParseResponse_MissingVerdict(t *testing.T) {
	for _, text := range []string{
		`{}`,
		`{"answer":"spam"}`,
		`null`,
		`Sure! {"spam": true}`,
		`{"confidence":0.9,"explanation":"looks fine"}`,
	} {
		_, err := ParseResponse(text)
		assert.ErrorIs(t, err, ErrNoVerdict, text)
	}
}

func TestResponse_Verdict(t *testing.T) {
	yes, low, edge := true, 0.4, 0.7

	r := &Response{IsSpam: &yes, Score: &low}
	assert.Equal(t, core.VerdictSpam, r.Verdict(0))
	assert.Equal(t, core.VerdictNotSpam, r.Verdict(0.7))
	assert.Equal(t, core.VerdictSpam, (&Response{Score: &edge}).Verdict(0.7))

	// Fall back to whichever field the model returned
	assert.Equal(t, core.VerdictSpam, (&Response{IsSpam: &yes}).Verdict(0.7))
	assert.Equal(t, core.VerdictSpam, (&Response{Score: &edge}).Verdict(0))
	assert.Equal(t, core.VerdictNotSpam, (&Response{Score: &low}).Verdict(0))
	assert.Equal(t, core.VerdictUnknown, (&Response{}).Verdict(0.7))
}

func TestPrompt(t *testing.T) {
	assert.Contains(t, Prompt("WIN a FREE cruise"), "Message:\nWIN a FREE cruise\n")
}
