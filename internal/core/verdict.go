package core

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Verdict is the tri-state spam classification of a message
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictSpam
	VerdictNotSpam
)

// Labels used by the remote scoring endpoint
const (
	LabelSpam    = "Spam"
	LabelNotSpam = "Not Spam"
	LabelUnknown = "Unknown"
)

// String returns the lowercase name of the verdict
func (v Verdict) String() string {
	switch v {
	case VerdictSpam:
		return "spam"
	case VerdictNotSpam:
		return "not_spam"
	default:
		return "unknown"
	}
}

// Known reports whether the verdict is resolved
func (v Verdict) Known() bool {
	return v == VerdictSpam || v == VerdictNotSpam
}

// Label returns the wire label used by the scoring API
func (v Verdict) Label() string {
	switch v {
	case VerdictSpam:
		return LabelSpam
	case VerdictNotSpam:
		return LabelNotSpam
	default:
		return LabelUnknown
	}
}

// VerdictFromBool converts a resolved boolean decision
func VerdictFromBool(spam bool) Verdict {
	if spam {
		return VerdictSpam
	}
	return VerdictNotSpam
}

// VerdictFromLabel maps a scoring API label. Matching is exact.
func VerdictFromLabel(label string) Verdict {
	switch label {
	case LabelSpam:
		return VerdictSpam
	case LabelNotSpam:
		return VerdictNotSpam
	default:
		return VerdictUnknown
	}
}

// ParseVerdict parses the stored representation of a verdict.
// "1"/"true" is spam, "0"/"false" is not spam, everything else is unknown.
func ParseVerdict(s string) Verdict {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return VerdictSpam
	case "0", "false":
		return VerdictNotSpam
	default:
		return VerdictUnknown
	}
}

// Value implements driver.Valuer. Unknown is stored as NULL.
func (v Verdict) Value() (driver.Value, error) {
	switch v {
	case VerdictSpam:
		return "1", nil
	case VerdictNotSpam:
		return "0", nil
	default:
		return nil, nil
	}
}

// Scan implements sql.Scanner
func (v *Verdict) Scan(src interface{}) error {
	switch t := src.(type) {
	case nil:
		*v = VerdictUnknown
	case bool:
		*v = VerdictFromBool(t)
	case int64:
		*v = ParseVerdict(fmt.Sprint(t))
	case []byte:
		*v = ParseVerdict(string(t))
	case string:
		*v = ParseVerdict(t)
	default:
		return fmt.Errorf("cannot scan %T into Verdict", src)
	}
	return nil
}
