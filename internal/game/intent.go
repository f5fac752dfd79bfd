package game

// Intent is a request from the session to the model viewer or guess panel.
type Intent interface {
	Kind() string
}

// RequestNext asks the viewer to pick and show another entry of its choice.
// The viewer answers with Session.ShowEntry.
type RequestNext struct{}

// RequestSetEntry asks the viewer to show a specific entry.
type RequestSetEntry struct {
	ID string `json:"id"`
}

// RequestReveal asks the panel to reveal the current entry's name and details.
type RequestReveal struct{}

func (RequestNext) Kind() string     { return "next" }
func (RequestSetEntry) Kind() string { return "set_entry" }
func (RequestReveal) Kind() string   { return "reveal" }

// IntentSink receives intents in emission order.
type IntentSink interface {
	Emit(Intent)
}

// IntentSinkFunc adapts a function to IntentSink.
type IntentSinkFunc func(Intent)

// Emit calls f(i).
func (f IntentSinkFunc) Emit(i Intent) {
	f(i)
}

// Recorder is an IntentSink that buffers intents until drained.
type Recorder struct {
	intents []Intent
}

// Emit appends i.
func (r *Recorder) Emit(i Intent) {
	r.intents = append(r.intents, i)
}

// Drain returns the buffered intents and empties the buffer.
func (r *Recorder) Drain() []Intent {
	out := r.intents
	r.intents = nil
	return out
}

type discardSink struct{}

func (discardSink) Emit(Intent) {}
