package window

import "fmt"

// fillWindow writes the detection events of rounds [w.DecodeStart, w.DecodeEnd)
// into dst at the same detector positions. dst must be zero outside that range.
func fillWindow(dst []bool, rows [][]bool, w Window, perRound int) {
	for r := w.DecodeStart; r < w.DecodeEnd; r++ {
		copy(dst[r*perRound:(r+1)*perRound], rows[r])
	}
}

// clearWindow zeroes the range fillWindow wrote, leaving dst all zero.
func clearWindow(dst []bool, w Window, perRound int) {
	clear(dst[w.DecodeStart*perRound : w.DecodeEnd*perRound])
}

func checkPredictions(preds [][]bool, rows, numObs int) error {
	if len(preds) != rows {
		return fmt.Errorf("matcher returned %d predictions for %d syndromes", len(preds), rows)
	}
	for i, p := range preds {
		if len(p) != numObs {
			return fmt.Errorf("prediction %d has %d observables, want %d", i, len(p), numObs)
		}
	}
	return nil
}

// match submits syndromes to the matcher and validates the shape of the answer.
func (c *Compiled) match(syndromes [][]bool) ([][]bool, error) {
	c.metrics.IncMatcherCalls()
	c.metrics.AddWindows(len(syndromes))
	preds, err := c.matcher.DecodeBatch(syndromes)
	if err != nil {
		return nil, err
	}
	if err := checkPredictions(preds, len(syndromes), c.numObs); err != nil {
		return nil, err
	}
	return preds, nil
}
