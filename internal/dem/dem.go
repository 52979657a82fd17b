// Package dem reads detector error models in the Stim text format.
//
// Supported instructions: error, detector, logical_observable,
// shift_detectors and (nested) repeat blocks. Coordinates and tags are parsed
// and discarded.
package dem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

type kind uint8

const (
	kindError kind = iota
	kindDetector
	kindObservable
	kindShift
	kindRepeat
)

type instr struct {
	kind  kind
	prob  float64
	dets  []int // relative to the current detector offset
	obs   []int
	shift int
	count int
	body  []instr
}

// Mechanism is one independent error: with probability Prob it flips every
// detector in Detectors and every observable in Observables. Components
// joined with '^' are merged by symmetric difference.
type Mechanism struct {
	Prob        float64
	Detectors   []int
	Observables []int
}

// Model is a parsed detector error model.
type Model struct {
	root           []instr
	numDetectors   int
	numObservables int
	numMechanisms  int
	path           string
}

func (m *Model) NumDetectors() int   { return m.numDetectors }
func (m *Model) NumObservables() int { return m.numObservables }

// Path is the file the model was loaded from, empty for Parse.
func (m *Model) Path() string { return m.path }

// NumMechanisms is the number of error mechanisms after repeat expansion.
func (m *Model) NumMechanisms() int { return m.numMechanisms }

// Load parses the model stored at path.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.path = path
	return m, nil
}

// Parse reads a model from r.
func Parse(r io.Reader) (*Model, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	stack := [][]instr{nil}
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "}" {
			if len(stack) == 1 {
				return nil, fmt.Errorf("dem: line %d: unmatched '}'", lineNo)
			}
			body := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			top := len(stack) - 1
			last := &stack[top][len(stack[top])-1]
			last.body = body
			continue
		}
		in, opens, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("dem: line %d: %w", lineNo, err)
		}
		top := len(stack) - 1
		stack[top] = append(stack[top], in)
		if opens {
			stack = append(stack, nil)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("dem: %d unterminated repeat block(s)", len(stack)-1)
	}
	m := &Model{root: stack[0]}
	maxDet, _, maxObs, mechs := measure(m.root)
	m.numDetectors = maxDet + 1
	m.numObservables = maxObs + 1
	m.numMechanisms = mechs
	return m, nil
}

// measure returns the highest detector index relative to offset 0, the total
// detector shift, the highest observable index and the mechanism count of a
// block, without expanding repeats.
func measure(block []instr) (maxDet, shift, maxObs, mechs int) {
	maxDet, maxObs = -1, -1
	for _, in := range block {
		switch in.kind {
		case kindError, kindDetector, kindObservable:
			for _, d := range in.dets {
				maxDet = max(maxDet, shift+d)
			}
			for _, o := range in.obs {
				maxObs = max(maxObs, o)
			}
			if in.kind == kindError {
				mechs++
			}
		case kindShift:
			shift += in.shift
		case kindRepeat:
			bd, bs, bo, bm := measure(in.body)
			if in.count > 0 {
				if bd >= 0 {
					maxDet = max(maxDet, shift+(in.count-1)*bs+bd)
				}
				maxObs = max(maxObs, bo)
				mechs += in.count * bm
			}
			shift += in.count * bs
		}
	}
	return maxDet, shift, maxObs, mechs
}

// ForEachMechanism calls fn for every error mechanism in file order with
// repeats expanded and detector shifts applied. The slices passed to fn are
// freshly allocated. Iteration stops at the first error returned by fn.
func (m *Model) ForEachMechanism(fn func(Mechanism) error) error {
	_, err := walk(m.root, 0, fn)
	return err
}

// Mechanisms expands every error mechanism.
func (m *Model) Mechanisms() []Mechanism {
	out := make([]Mechanism, 0, m.numMechanisms)
	_ = m.ForEachMechanism(func(mc Mechanism) error {
		out = append(out, mc)
		return nil
	})
	return out
}

func walk(block []instr, offset int, fn func(Mechanism) error) (int, error) {
	for _, in := range block {
		switch in.kind {
		case kindError:
			dets := make([]int, len(in.dets))
			for i, d := range in.dets {
				dets[i] = offset + d
			}
			mc := Mechanism{Prob: in.prob, Detectors: dets, Observables: append([]int(nil), in.obs...)}
			if err := fn(mc); err != nil {
				return offset, err
			}
		case kindShift:
			offset += in.shift
		case kindRepeat:
			for i := 0; i < in.count; i++ {
				var err error
				if offset, err = walk(in.body, offset, fn); err != nil {
					return offset, err
				}
			}
		}
	}
	return offset, nil
}

func parseLine(line string) (instr, bool, error) {
	name, args, rest, err := splitHead(line)
	if err != nil {
		return instr{}, false, err
	}
	switch name {
	case "error":
		if len(args) != 1 {
			return instr{}, false, fmt.Errorf("error takes one probability, got %d arguments", len(args))
		}
		p, err := strconv.ParseFloat(args[0], 64)
		if err != nil || p < 0 || p > 1 {
			return instr{}, false, fmt.Errorf("bad probability %q", args[0])
		}
		dets, obs, err := parseTargets(rest, true)
		if err != nil {
			return instr{}, false, err
		}
		return instr{kind: kindError, prob: p, dets: dets, obs: obs}, false, nil
	case "detector":
		dets, obs, err := parseTargets(rest, false)
		if err != nil {
			return instr{}, false, err
		}
		if len(obs) > 0 {
			return instr{}, false, fmt.Errorf("detector declares an observable target")
		}
		return instr{kind: kindDetector, dets: dets}, false, nil
	case "logical_observable":
		dets, obs, err := parseTargets(rest, false)
		if err != nil {
			return instr{}, false, err
		}
		if len(dets) > 0 {
			return instr{}, false, fmt.Errorf("logical_observable declares a detector target")
		}
		return instr{kind: kindObservable, obs: obs}, false, nil
	case "shift_detectors":
		f := strings.Fields(rest)
		if len(f) != 1 {
			return instr{}, false, fmt.Errorf("shift_detectors takes one shift, got %q", rest)
		}
		n, err := strconv.Atoi(f[0])
		if err != nil || n < 0 {
			return instr{}, false, fmt.Errorf("bad detector shift %q", f[0])
		}
		return instr{kind: kindShift, shift: n}, false, nil
	case "repeat":
		f := strings.Fields(rest)
		if len(f) != 2 || f[1] != "{" {
			return instr{}, false, fmt.Errorf("repeat must look like 'repeat N {', got %q", line)
		}
		n, err := strconv.Atoi(f[0])
		if err != nil || n < 0 {
			return instr{}, false, fmt.Errorf("bad repeat count %q", f[0])
		}
		return instr{kind: kindRepeat, count: n}, true, nil
	case "detector_separator":
		return instr{kind: kindShift}, false, nil
	}
	return instr{}, false, fmt.Errorf("unknown instruction %q", name)
}

// splitHead splits "name[tag](a, b) rest" into its parts.
func splitHead(line string) (name string, args []string, rest string, err error) {
	end := strings.IndexAny(line, "[( \t")
	if end < 0 {
		return strings.ToLower(line), nil, "", nil
	}
	name = strings.ToLower(line[:end])
	line = line[end:]
	if strings.HasPrefix(line, "[") {
		j := strings.IndexByte(line, ']')
		if j < 0 {
			return "", nil, "", fmt.Errorf("unterminated tag")
		}
		line = line[j+1:]
	}
	if strings.HasPrefix(line, "(") {
		j := strings.IndexByte(line, ')')
		if j < 0 {
			return "", nil, "", fmt.Errorf("unterminated argument list")
		}
		for _, a := range strings.Split(line[1:j], ",") {
			if a = strings.TrimSpace(a); a != "" {
				args = append(args, a)
			}
		}
		line = line[j+1:]
	}
	return name, args, strings.TrimSpace(line), nil
}

// parseTargets reads D#, L# and (when allowSep) ^ targets. Repeated targets
// across '^' components cancel.
func parseTargets(s string, allowSep bool) (dets, obs []int, err error) {
	dset := map[int]bool{}
	oset := map[int]bool{}
	for _, t := range strings.Fields(s) {
		if t == "^" {
			if !allowSep {
				return nil, nil, fmt.Errorf("unexpected separator")
			}
			continue
		}
		if len(t) < 2 {
			return nil, nil, fmt.Errorf("bad target %q", t)
		}
		n, perr := strconv.Atoi(t[1:])
		if perr != nil || n < 0 {
			return nil, nil, fmt.Errorf("bad target %q", t)
		}
		switch t[0] {
		case 'D', 'd':
			dset[n] = !dset[n]
		case 'L', 'l':
			oset[n] = !oset[n]
		default:
			return nil, nil, fmt.Errorf("bad target %q", t)
		}
	}
	return setMembers(dset), setMembers(oset), nil
}

func setMembers(s map[int]bool) []int {
	out := make([]int, 0, len(s))
	for k, v := range s {
		if v {
			out = append(out, k)
		}
	}
	sort.Ints(out)
	return out
}
