// Package window implements sliding-window decoding of round-indexed
// detection-event histories on top of an external matching decoder.
//
// A history of NumRounds rounds is cut into recording windows that partition
// [0, NumRounds). Each recording window is decoded with Overlap extra rounds
// of context on both sides (clipped at the history boundaries); only one
// prediction per window is kept and the predictions are XOR-combined into the
// shot's logical prediction.
package window

// ErrorModel is the part of a detector error model the decoder needs.
// Detectors are assumed to be laid out round-major with the same count in
// every round.
type ErrorModel interface {
	NumDetectors() int
	NumObservables() int
}

// Matcher is the external matching decoder. DecodeBatch receives full-length
// syndromes (NumDetectors bools each) and returns one prediction of
// NumObservables bools per syndrome. It must be deterministic and must not
// retain syndromes after returning; the caller reuses their storage.
type Matcher interface {
	NumDetectors() int
	NumObservables() int
	DecodeBatch(syndromes [][]bool) ([][]bool, error)
}

// MatcherBuilder compiles a Matcher for an error model.
type MatcherBuilder func(ErrorModel) (Matcher, error)

// Decoder is a decoding strategy that can be compiled for an error model.
type Decoder interface {
	Compile(ErrorModel) (CompiledDecoder, error)
}

// CompiledDecoder decodes bit-packed shots for the error model it was compiled for.
type CompiledDecoder interface {
	NumDetectors() int
	NumObservables() int
	// DecodeShotsBitPacked takes numShots rows of ceil(NumDetectors/8) bytes
	// and returns numShots rows of ceil(NumObservables/8) bytes.
	DecodeShotsBitPacked(packed []byte, numShots int) ([]byte, error)
}

// Sliding is the windowed Decoder.
type Sliding struct {
	Build   MatcherBuilder
	Options Options
}

func (s Sliding) Compile(m ErrorModel) (CompiledDecoder, error) {
	return Compile(m, s.Build, s.Options)
}

// Direct decodes the whole history in a single matcher call per shot.
type Direct struct {
	Build MatcherBuilder
}

func (d Direct) Compile(m ErrorModel) (CompiledDecoder, error) {
	return CompileDirect(m, d.Build)
}

var (
	_ Decoder         = Sliding{}
	_ Decoder         = Direct{}
	_ CompiledDecoder = (*Compiled)(nil)
	_ CompiledDecoder = (*DirectCompiled)(nil)
)
