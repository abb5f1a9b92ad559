package core

import (
	"sort"
	"sync"
)

// Thread is the set of messages exchanged with one address
type Thread struct {
	address    string
	messages   map[int64]*Message
	snippet    string
	latestDate int64
	spamIDs    map[int64]struct{}
}

func newThread(address string) *Thread {
	return &Thread{
		address:  address,
		messages: make(map[int64]*Message),
		spamIDs:  make(map[int64]struct{}),
	}
}

// add upserts a message. The snapshot only moves forward in time and the
// spam count never decreases.
func (t *Thread) add(msg Message, excerpt func(string) string) {
	t.messages[msg.ID] = &msg

	if msg.Date > t.latestDate {
		t.latestDate = msg.Date
		t.snippet = excerpt(msg.Body)
	}

	if msg.Verdict == VerdictSpam {
		t.spamIDs[msg.ID] = struct{}{}
	}
}

func (t *Thread) summary() ThreadSummary {
	return ThreadSummary{
		Address:    t.address,
		Snippet:    t.snippet,
		LatestDate: t.latestDate,
		Size:       len(t.messages),
		SpamCount:  len(t.spamIDs),
	}
}

// ThreadIndex groups messages by address. It is safe for concurrent use;
// the VerdictService is its only writer.
type ThreadIndex struct {
	mu      sync.RWMutex
	threads map[string]*Thread
	excerpt func(string) string
}

// NewThreadIndex creates an empty index. excerpt shortens message bodies
// for the thread snapshot; nil keeps bodies as they are.
func NewThreadIndex(excerpt func(string) string) *ThreadIndex {
	if excerpt == nil {
		excerpt = func(s string) string { return s }
	}
	return &ThreadIndex{
		threads: make(map[string]*Thread),
		excerpt: excerpt,
	}
}

// Add inserts or updates a message in the thread for its address
func (idx *ThreadIndex) Add(msgs ...*Message) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, msg := range msgs {
		t, ok := idx.threads[msg.Address]
		if !ok {
			t = newThread(msg.Address)
			idx.threads[msg.Address] = t
		}
		t.add(*msg, idx.excerpt)
	}
}

// Thread returns the summary for one address
func (idx *ThreadIndex) Thread(address string) (ThreadSummary, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	t, ok := idx.threads[address]
	if !ok {
		return ThreadSummary{}, false
	}
	return t.summary(), true
}

// Threads returns all thread summaries, most recent first
func (idx *ThreadIndex) Threads() []ThreadSummary {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]ThreadSummary, 0, len(idx.threads))
	for _, t := range idx.threads {
		out = append(out, t.summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LatestDate == out[j].LatestDate {
			return out[i].Address < out[j].Address
		}
		return out[i].LatestDate > out[j].LatestDate
	})
	return out
}

// Messages returns copies of the messages of one thread sorted by date
func (idx *ThreadIndex) Messages(address string, ascending bool) []Message {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	t, ok := idx.threads[address]
	if !ok {
		return nil
	}

	out := make([]Message, 0, len(t.messages))
	for _, m := range t.messages {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date == out[j].Date {
			return out[i].ID < out[j].ID
		}
		if ascending {
			return out[i].Date < out[j].Date
		}
		return out[i].Date > out[j].Date
	})
	return out
}

// Len returns the number of threads
func (idx *ThreadIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.threads)
}

// Reset drops every thread
func (idx *ThreadIndex) Reset() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.threads = make(map[string]*Thread)
}
