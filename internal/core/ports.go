package core

import (
	"context"
)

// Scorer produces a verdict for a message body. Implementations never
// return errors; faults are logged and reported as VerdictUnknown.
type Scorer interface {
	Name() string
	Score(ctx context.Context, body string) Verdict
}

// VerdictStore is the durable message/verdict store
type VerdictStore interface {
	// Insert stores a new message
	Insert(ctx context.Context, msg *Message) error

	// Update overwrites the stored message with the same ID
	Update(ctx context.Context, msg *Message) error

	// LoadAll returns every stored message sorted by date descending
	LoadAll(ctx context.Context) ([]*Message, error)

	// Clear removes every stored message
	Clear(ctx context.Context) error
}

// MessageSource lists the messages on the device
type MessageSource interface {
	// Fetch returns inbound and outbound messages sorted by date descending
	Fetch(ctx context.Context) ([]*Message, error)
}
