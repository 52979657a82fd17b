package window

import "fmt"

// roundCandidates are the history lengths tried, in order, when the round
// count is not given. Each candidate c is tried as c and then c+1, since a
// memory experiment with c syndrome rounds carries one extra detector round
// for the final data measurement.
var roundCandidates = []int{3, 5, 7, 9, 11, 13, 15, 17, 19, 21, 23, 25, 50, 100, 200, 500, 1000, 10000}

const (
	minDetectorsPerRound = 1
	maxDetectorsPerRound = 10000
)

func plausibleRounds(totalDetectors, rounds int) bool {
	if rounds <= 0 || totalDetectors%rounds != 0 {
		return false
	}
	per := totalDetectors / rounds
	return per >= minDetectorsPerRound && per <= maxDetectorsPerRound
}

// InferRounds guesses the number of detector rounds from the detector count.
// It is best-effort: the first plausible candidate wins and every other
// plausible candidate is returned in alternatives so the caller can flag
// layouts with more than one valid factorization.
func InferRounds(totalDetectors int) (rounds int, alternatives []int, err error) {
	seen := make(map[int]bool, 2*len(roundCandidates))
	for _, c := range roundCandidates {
		for _, r := range [2]int{c, c + 1} {
			if seen[r] || !plausibleRounds(totalDetectors, r) {
				continue
			}
			seen[r] = true
			if rounds == 0 {
				rounds = r
			} else {
				alternatives = append(alternatives, r)
			}
		}
	}
	if rounds == 0 {
		return 0, nil, &ConfigError{
			Field:  "num_detectors",
			Value:  totalDetectors,
			Reason: "cannot infer the number of rounds; set num_rounds explicitly",
		}
	}
	return rounds, alternatives, nil
}

// checkRounds validates an explicit round count against the detector count.
func checkRounds(totalDetectors, rounds int) error {
	if rounds < 1 {
		return &ConfigError{Field: "num_rounds", Value: rounds, Reason: "must be >= 1"}
	}
	if totalDetectors%rounds != 0 {
		return &ConfigError{
			Field:  "num_rounds",
			Value:  rounds,
			Reason: fmt.Sprintf("does not divide %d detectors", totalDetectors),
		}
	}
	return nil
}
