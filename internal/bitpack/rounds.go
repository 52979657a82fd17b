package bitpack

import "fmt"

// ShapeMismatch reports a detector vector whose length is not rounds*perRound.
type ShapeMismatch struct {
	Len       int
	NumRounds int
	PerRound  int
}

func (e *ShapeMismatch) Error() string {
	return fmt.Sprintf("bitpack: vector of %d bits is not %d rounds x %d detectors", e.Len, e.NumRounds, e.PerRound)
}

// Rounds returns a [round][detector] view of v. The rows share v's backing array.
func Rounds(v []bool, numRounds, perRound int) ([][]bool, error) {
	if numRounds <= 0 || perRound <= 0 || len(v) != numRounds*perRound {
		return nil, &ShapeMismatch{Len: len(v), NumRounds: numRounds, PerRound: perRound}
	}
	out := make([][]bool, numRounds)
	for r := range out {
		out[r] = v[r*perRound : (r+1)*perRound : (r+1)*perRound]
	}
	return out, nil
}

