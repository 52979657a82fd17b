package window

import (
	"time"

	"github.com/observe-l/slidewin/internal/bitpack"
	"github.com/observe-l/slidewin/internal/metrics"
)

// Compiled is a sliding-window decoder bound to one error model. It is
// immutable; every decode call works on its own scratch buffers, so it may be
// shared between goroutines when the matcher is safe for concurrent use.
type Compiled struct {
	matcher      Matcher
	numRounds    int
	perRound     int
	windowSize   int
	overlap      int
	numObs       int
	total        int
	plan         []Window
	batchWindows bool
	group        int
	metrics      *metrics.Decode
}

func (c *Compiled) NumDetectors() int      { return c.total }
func (c *Compiled) NumObservables() int    { return c.numObs }
func (c *Compiled) NumRounds() int         { return c.numRounds }
func (c *Compiled) DetectorsPerRound() int { return c.perRound }
func (c *Compiled) WindowSize() int        { return c.windowSize }
func (c *Compiled) Overlap() int           { return c.overlap }

// Windows returns a copy of the window plan.
func (c *Compiled) Windows() []Window { return append([]Window(nil), c.plan...) }

// scratch holds the per-call buffers for a group of shots.
type scratch struct {
	dets      [][]bool // group x total
	syndromes [][]bool // (group * windows) x total when batched, a single row otherwise
	preds     [][]bool // group x numObs
	acc       accumulator
}

func (c *Compiled) newScratch() *scratch {
	rows := 1
	if c.batchWindows {
		rows = c.group * len(c.plan)
	}
	s := &scratch{
		dets:      make([][]bool, c.group),
		syndromes: make([][]bool, rows),
		preds:     make([][]bool, c.group),
		acc:       newAccumulator(c.numObs),
	}
	for i := range s.dets {
		s.dets[i] = make([]bool, c.total)
		s.preds[i] = make([]bool, c.numObs)
	}
	for i := range s.syndromes {
		s.syndromes[i] = make([]bool, c.total)
	}
	return s
}

// DecodeShot decodes one unpacked shot of NumDetectors detection events.
func (c *Compiled) DecodeShot(dets []bool) ([]bool, error) {
	if len(dets) != c.total {
		return nil, &ShapeError{What: "detection events", Got: len(dets), Want: c.total}
	}
	s := c.newScratch()
	copy(s.dets[0], dets)
	if err := c.decodeGroup(0, 1, s); err != nil {
		c.metrics.IncError(string(Classify(err)))
		return nil, err
	}
	c.metrics.AddShots(1)
	return append([]bool(nil), s.preds[0]...), nil
}

// DecodeShotsBitPacked decodes numShots rows of ceil(NumDetectors/8) bytes
// and returns numShots rows of ceil(NumObservables/8) bytes.
func (c *Compiled) DecodeShotsBitPacked(packed []byte, numShots int) ([]byte, error) {
	start := time.Now()
	inBytes := bitpack.BytesFor(c.total)
	outBytes := bitpack.BytesFor(c.numObs)
	if numShots < 0 {
		c.metrics.IncError(string(CodeShape))
		return nil, &ShapeError{What: "shot count", Got: numShots, Want: 0}
	}
	if len(packed) != numShots*inBytes {
		c.metrics.IncError(string(CodeShape))
		return nil, &ShapeError{What: "bit-packed detection bytes", Got: len(packed), Want: numShots * inBytes}
	}
	out := make([]byte, numShots*outBytes)
	if numShots == 0 {
		return out, nil
	}
	s := c.newScratch()
	for first := 0; first < numShots; first += c.group {
		n := min(c.group, numShots-first)
		for k := 0; k < n; k++ {
			row := packed[(first+k)*inBytes : (first+k+1)*inBytes]
			bitpack.UnpackInto(s.dets[k], row)
		}
		if err := c.decodeGroup(first, n, s); err != nil {
			c.metrics.IncError(string(Classify(err)))
			return nil, err
		}
		for k := 0; k < n; k++ {
			bitpack.PackInto(out[(first+k)*outBytes:], s.preds[k])
		}
	}
	c.metrics.AddShots(numShots)
	c.metrics.ObserveBatch(start)
	return out, nil
}

// decodeGroup decodes s.dets[:n] (shots first..first+n-1) into s.preds[:n].
func (c *Compiled) decodeGroup(first, n int, s *scratch) error {
	if c.batchWindows {
		return c.decodeGroupBatched(first, n, s)
	}
	syn := s.syndromes[0]
	for k := 0; k < n; k++ {
		rows, err := bitpack.Rounds(s.dets[k], c.numRounds, c.perRound)
		if err != nil {
			return &ShapeError{What: "detection events", Got: len(s.dets[k]), Want: c.total}
		}
		s.acc.reset()
		for i, w := range c.plan {
			fillWindow(syn, rows, w, c.perRound)
			preds, err := c.match(s.syndromes[:1])
			clearWindow(syn, w, c.perRound)
			if err != nil {
				return &DecodeError{Shot: first + k, Window: i, Err: err}
			}
			s.acc.xor(preds[0])
		}
		s.acc.store(s.preds[k])
	}
	return nil
}

// decodeGroupBatched submits every window of every shot in the group in one
// matcher call.
func (c *Compiled) decodeGroupBatched(first, n int, s *scratch) error {
	nw := len(c.plan)
	for k := 0; k < n; k++ {
		rows, err := bitpack.Rounds(s.dets[k], c.numRounds, c.perRound)
		if err != nil {
			return &ShapeError{What: "detection events", Got: len(s.dets[k]), Want: c.total}
		}
		for i, w := range c.plan {
			fillWindow(s.syndromes[k*nw+i], rows, w, c.perRound)
		}
	}
	preds, err := c.match(s.syndromes[:n*nw])
	if err != nil {
		return &DecodeError{Shot: first, Shots: n, Window: -1, Err: err}
	}
	for k := 0; k < n; k++ {
		s.acc.reset()
		for i := 0; i < nw; i++ {
			s.acc.xor(preds[k*nw+i])
		}
		s.acc.store(s.preds[k])
	}
	return nil
}
