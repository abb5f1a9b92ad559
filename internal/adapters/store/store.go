// Package store holds the VerdictStore implementations.
package store

import (
	"errors"
	"sort"

	"github.com/mikey/sms-spam-pilot/internal/core"
)

var (
	// ErrNotFound is returned when updating a message that was never inserted
	ErrNotFound = errors.New("message not found")

	// ErrDuplicate is returned when inserting a message ID twice
	ErrDuplicate = errors.New("message already stored")
)

// sortByDateDesc orders messages newest first, breaking ties by ID
func sortByDateDesc(msgs []*core.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Date != msgs[j].Date {
			return msgs[i].Date > msgs[j].Date
		}
		return msgs[i].ID > msgs[j].ID
	})
}
