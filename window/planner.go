package window

import "fmt"

// Window is one recording/decoding range pair in round units:
// 0 <= DecodeStart <= RecordStart < RecordEnd <= DecodeEnd <= NumRounds.
type Window struct {
	RecordStart int
	RecordEnd   int
	DecodeStart int
	DecodeEnd   int
}

// RecordRounds is the number of rounds whose prediction this window owns.
func (w Window) RecordRounds() int { return w.RecordEnd - w.RecordStart }

// DecodeRounds is the number of rounds submitted to the matcher.
func (w Window) DecodeRounds() int { return w.DecodeEnd - w.DecodeStart }

func (w Window) String() string {
	return fmt.Sprintf("record[%d,%d) decode[%d,%d)", w.RecordStart, w.RecordEnd, w.DecodeStart, w.DecodeEnd)
}

// Planner walks the windows of one history. The zero value is not usable;
// create one with NewPlanner.
type Planner struct {
	numRounds int
	size      int
	overlap   int
	cursor    int
	done      bool
}

// NewPlanner validates the parameters and returns a planner positioned at round 0.
func NewPlanner(numRounds, size, overlap int) (*Planner, error) {
	if numRounds < 1 {
		return nil, &ConfigError{Field: "num_rounds", Value: numRounds, Reason: "must be >= 1"}
	}
	if size < 1 {
		return nil, &ConfigError{Field: "window_size", Value: size, Reason: "must be >= 1"}
	}
	if overlap < 0 {
		return nil, &ConfigError{Field: "overlap", Value: overlap, Reason: "must be >= 0"}
	}
	return &Planner{numRounds: numRounds, size: size, overlap: overlap}, nil
}

// Done reports whether every round has been covered.
func (p *Planner) Done() bool { return p.done || p.cursor >= p.numRounds }

// Next returns the next window, or false once the history is covered. The
// last window always ends at NumRounds, even when size does not divide it.
func (p *Planner) Next() (Window, bool) {
	if p.Done() {
		return Window{}, false
	}
	start := p.cursor
	end := min(start+p.size, p.numRounds)
	terminal := start+p.size > p.numRounds || end == p.numRounds
	if terminal {
		end = p.numRounds
	}
	w := Window{
		RecordStart: start,
		RecordEnd:   end,
		DecodeStart: max(0, start-p.overlap),
		DecodeEnd:   min(end+p.overlap, p.numRounds),
	}
	if terminal {
		p.done = true
	} else {
		p.cursor = end
	}
	return w, true
}

// Plan returns every window for the given parameters.
func Plan(numRounds, size, overlap int) ([]Window, error) {
	p, err := NewPlanner(numRounds, size, overlap)
	if err != nil {
		return nil, err
	}
	out := make([]Window, 0, (numRounds+size-1)/size)
	for w, ok := p.Next(); ok; w, ok = p.Next() {
		out = append(out, w)
	}
	return out, nil
}
