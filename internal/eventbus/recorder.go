package eventbus

import "sync"

// Recorder is a test-friendly Bus that records every published event and
// still delivers it to its own subscribers.
type Recorder struct {
	Bus

	mu     sync.Mutex
	events []Event
}

// NewRecorder creates a recorder backed by a fresh bus without logging.
func NewRecorder() *Recorder {
	return &Recorder{Bus: New(nil)}
}

// Publish records ev and forwards it.
func (r *Recorder) Publish(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	r.Bus.Publish(ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Published returns the recorded events of one topic.
func (r *Recorder) Published(topic Topic) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Topic == topic {
			out = append(out, ev)
		}
	}
	return out
}
