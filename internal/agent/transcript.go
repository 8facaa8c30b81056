package agent

import (
	"github.com/meetspot-ai/meetspot/provider"
)

// Transcript is the append-only message history of one run. It also
// keeps a fixed-size ring of recent assistant outputs for loop
// detection, so stuck checks never scan the whole history.
type Transcript struct {
	messages []provider.Message

	ring     []string
	ringNext int
	ringLen  int
}

// NewTranscript creates a transcript whose stuck-detection window holds
// the last window assistant messages.
func NewTranscript(window int) *Transcript {
	if window <= 0 {
		window = 8
	}
	return &Transcript{ring: make([]string, window)}
}

// Append adds a message. Assistant content is also recorded in the ring.
func (t *Transcript) Append(msg provider.Message) {
	t.messages = append(t.messages, msg)
	if msg.Role == provider.RoleAssistant && msg.Content != "" {
		t.ring[t.ringNext] = msg.Content
		t.ringNext = (t.ringNext + 1) % len(t.ring)
		if t.ringLen < len(t.ring) {
			t.ringLen++
		}
	}
}

// Messages returns the history for sending to the model. The slice is
// shared; callers must not mutate it.
func (t *Transcript) Messages() []provider.Message {
	return t.messages
}

// Len reports the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Reset clears everything for a new run.
func (t *Transcript) Reset() {
	t.messages = t.messages[:0]
	for i := range t.ring {
		t.ring[i] = ""
	}
	t.ringNext, t.ringLen = 0, 0
}

// Stuck reports whether the most recent assistant content appears at
// least threshold more times among the prior ring entries.
func (t *Transcript) Stuck(threshold int) bool {
	if t.ringLen < 2 || threshold <= 0 {
		return false
	}
	lastIdx := (t.ringNext - 1 + len(t.ring)) % len(t.ring)
	last := t.ring[lastIdx]
	if last == "" {
		return false
	}
	dups := 0
	for i := 0; i < t.ringLen; i++ {
		idx := (t.ringNext - 1 - i + 2*len(t.ring)) % len(t.ring)
		if idx == lastIdx && i == 0 {
			continue
		}
		if t.ring[idx] == last {
			dups++
		}
	}
	return dups >= threshold
}
