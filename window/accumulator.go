package window

// accumulator XOR-combines window predictions for one shot. With a single
// observable it keeps a scalar bit; otherwise a bool per observable. The
// variant is fixed when the decoder is compiled.
type accumulator struct {
	scalar bool
	bit    bool
	vec    []bool
}

func newAccumulator(numObservables int) accumulator {
	if numObservables == 1 {
		return accumulator{scalar: true}
	}
	return accumulator{vec: make([]bool, numObservables)}
}

func (a *accumulator) reset() {
	a.bit = false
	for i := range a.vec {
		a.vec[i] = false
	}
}

func (a *accumulator) xor(pred []bool) {
	if a.scalar {
		a.bit = a.bit != pred[0]
		return
	}
	for i, p := range pred {
		a.vec[i] = a.vec[i] != p
	}
}

func (a *accumulator) store(dst []bool) {
	if a.scalar {
		dst[0] = a.bit
		return
	}
	copy(dst, a.vec)
}

// Accumulate XORs preds (one per window, numObs bools each) into a single
// prediction. Window order does not affect the result.
func Accumulate(preds [][]bool, numObs int) []bool {
	a := newAccumulator(numObs)
	for _, p := range preds {
		a.xor(p)
	}
	out := make([]bool, numObs)
	a.store(out)
	return out
}
