package core

// Direction is the folder a message came from, using the platform type codes
type Direction int

const (
	DirectionInbound  Direction = 1
	DirectionOutbound Direction = 2
)

// String returns the direction name
func (d Direction) String() string {
	switch d {
	case DirectionInbound:
		return "inbound"
	case DirectionOutbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// Message represents one text message
type Message struct {
	ID        int64     `json:"id" db:"id"`
	Address   string    `json:"address" db:"address"`
	Body      string    `json:"body" db:"body"`
	Date      int64     `json:"date" db:"date"`
	Direction Direction `json:"type" db:"type"`
	Verdict   Verdict   `json:"-" db:"spam"`
}

// ThreadSummary is the display view of a thread
type ThreadSummary struct {
	Address    string `json:"address"`
	Snippet    string `json:"snippet"`
	LatestDate int64  `json:"latest_date"`
	Size       int    `json:"size"`
	SpamCount  int    `json:"spam_count"`
}

// HasSpam reports whether any message in the thread was flagged
func (s ThreadSummary) HasSpam() bool {
	return s.SpamCount > 0
}

// BatchStats summarises one scoring pass
type BatchStats struct {
	Total      int
	Skipped    int
	Scored     int
	Resolved   int
	Unresolved int
}
