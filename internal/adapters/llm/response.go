// Package llm holds the prompt and response handling shared by the
// language model scoring backends.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/sms-spam-pilot/internal/core"
)

// SystemPrompt is sent as the system message where the provider supports one
const SystemPrompt = "You are a spam detection system. Respond only with JSON."

const promptFormat = `You are a spam detection system. Analyze the following SMS text message and determine if it's spam.
Respond with a JSON object containing:
- is_spam: boolean (true if spam, false if not)
- score: number between 0 and 1 (higher means more likely to be spam)
- confidence: number between 0 and 1 (how confident you are in your assessment)
- explanation: string (brief explanation of why you think it's spam or not)

Message:
%s

Respond only with the JSON object and nothing else.`

var (
	// ErrNoJSON is returned when a model reply contains no JSON object
	ErrNoJSON = errors.New("no JSON object in model response")
	// ErrNoVerdict is returned when the reply carries neither is_spam nor score
	ErrNoVerdict = errors.New("model response has no is_spam or score")
)

// Response is the structured reply requested from the model. IsSpam and
// Score are nil when the model left them out.
type Response struct {
	IsSpam      *bool    `json:"is_spam"`
	Score       *float64 `json:"score"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Prompt formats the user prompt for a message body
func Prompt(body string) string {
	return fmt.Sprintf(promptFormat, body)
}

// ParseResponse decodes a model reply, tolerating text around the JSON object
func ParseResponse(text string) (*Response, error) {
	var resp *Response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		start := strings.IndexByte(text, '{')
		end := strings.LastIndexByte(text, '}')
		if start < 0 || end < start {
			return nil, ErrNoJSON
		}
		resp = nil
		if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}
	if resp == nil || (resp.IsSpam == nil && resp.Score == nil) {
		return nil, ErrNoVerdict
	}
	return resp, nil
}

// Verdict applies threshold to the score; a non-positive threshold trusts
// is_spam. Whichever field is present is used when the preferred one is
// missing, and a reply with neither is unknown.
func (r *Response) Verdict(threshold float64) core.Verdict {
	switch {
	case threshold > 0 && r.Score != nil:
		return core.VerdictFromBool(*r.Score >= threshold)
	case r.IsSpam != nil:
		return core.VerdictFromBool(*r.IsSpam)
	case r.Score != nil:
		return core.VerdictFromBool(*r.Score >= 0.5)
	}
	return core.VerdictUnknown
}
