package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadIndex_SnapshotFollowsNewestMessage(t *testing.T) {
	idx := NewThreadIndex(nil)
	idx.Add(
		&Message{ID: 1, Address: "A", Body: "first", Date: 100},
		&Message{ID: 2, Address: "A", Body: "newest", Date: 300},
		&Message{ID: 3, Address: "A", Body: "middle", Date: 200},
	)

	s, ok := idx.Thread("A")
	require.True(t, ok)
	assert.Equal(t, "newest", s.Snippet)
	assert.Equal(t, int64(300), s.LatestDate)
	assert.Equal(t, 3, s.Size)
}

func TestThreadIndex_EqualDateKeepsSnapshot(t *testing.T) {
	idx := NewThreadIndex(nil)
	idx.Add(&Message{ID: 1, Address: "A", Body: "one", Date: 100})
	idx.Add(&Message{ID: 2, Address: "A", Body: "two", Date: 100})

	s, _ := idx.Thread("A")
	assert.Equal(t, "one", s.Snippet)
}

func TestThreadIndex_SpamCountIsSticky(t *testing.T) {
	idx := NewThreadIndex(nil)
	idx.Add(&Message{ID: 1, Address: "A", Body: "win", Date: 100, Verdict: VerdictSpam})
	idx.Add(&Message{ID: 1, Address: "A", Body: "win", Date: 100, Verdict: VerdictNotSpam})
	idx.Add(&Message{ID: 1, Address: "A", Body: "win", Date: 100, Verdict: VerdictSpam})

	s, _ := idx.Thread("A")
	assert.Equal(t, 1, s.SpamCount)
	assert.True(t, s.HasSpam())
	assert.Equal(t, 1, s.Size)
}

func TestThreadIndex_Threads(t *testing.T) {
	idx := NewThreadIndex(func(s string) string { return strings.ToUpper(s) })
	idx.Add(
		&Message{ID: 1, Address: "B", Body: "b", Date: 100},
		&Message{ID: 2, Address: "A", Body: "a", Date: 200},
		&Message{ID: 3, Address: "C", Body: "c", Date: 200},
	)

	threads := idx.Threads()
	require.Len(t, threads, 3)
	assert.Equal(t, []string{"A", "C", "B"}, []string{threads[0].Address, threads[1].Address, threads[2].Address})
	assert.Equal(t, "A", threads[0].Snippet)
	assert.Equal(t, 3, idx.Len())
}

func TestThreadIndex_MessagesAreCopies(t *testing.T) {
	idx := NewThreadIndex(nil)
	msg := &Message{ID: 1, Address: "A", Body: "hi", Date: 10}
	idx.Add(msg, &Message{ID: 2, Address: "A", Body: "later", Date: 20})
	msg.Body = "mutated"

	asc := idx.Messages("A", true)
	require.Len(t, asc, 2)
	assert.Equal(t, "hi", asc[0].Body)
	assert.Equal(t, "later", asc[1].Body)

	desc := idx.Messages("A", false)
	assert.Equal(t, int64(2), desc[0].ID)

	assert.Nil(t, idx.Messages("missing", true))
}

func TestThreadIndex_Reset(t *testing.T) {
	idx := NewThreadIndex(nil)
	idx.Add(&Message{ID: 1, Address: "A", Body: "hi", Date: 10})
	idx.Reset()
	assert.Equal(t, 0, idx.Len())
	_, ok := idx.Thread("A")
	assert.False(t, ok)
}
