// Package extern runs an external matching decoder as a subprocess, one
// process per batch, exchanging syndromes and predictions as b8 files.
package extern

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/observe-l/slidewin/internal/bitpack"
	"github.com/observe-l/slidewin/internal/shotdata"
	"github.com/observe-l/slidewin/window"
)

// Config describes the command line. Each argument may contain the
// placeholders {dem}, {in}, {out}, {shots}, {detectors} and {observables}.
type Config struct {
	Command []string
	// Timeout bounds one batch; 0 means no limit.
	Timeout time.Duration
	// ModelPath overrides the path reported by the error model.
	ModelPath string
	// TempDir is where batch files are written; empty means os.TempDir.
	TempDir string
	Logger  *zap.Logger
}

// Matcher implements window.Matcher. Each DecodeBatch uses its own temp
// directory, so concurrent calls are safe.
type Matcher struct {
	cfg            Config
	modelPath      string
	numDetectors   int
	numObservables int
	log            *zap.Logger
}

type pathModel interface {
	Path() string
}

func New(em window.ErrorModel, cfg Config) (*Matcher, error) {
	if len(cfg.Command) == 0 {
		return nil, fmt.Errorf("extern: empty command")
	}
	path := cfg.ModelPath
	if path == "" {
		if pm, ok := em.(pathModel); ok {
			path = pm.Path()
		}
	}
	if path == "" {
		return nil, fmt.Errorf("extern: error model has no file path")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Matcher{
		cfg:            cfg,
		modelPath:      path,
		numDetectors:   em.NumDetectors(),
		numObservables: em.NumObservables(),
		log:            log,
	}, nil
}

// Builder returns a window.MatcherBuilder for cfg.
func Builder(cfg Config) window.MatcherBuilder {
	return func(em window.ErrorModel) (window.Matcher, error) {
		return New(em, cfg)
	}
}

func (m *Matcher) NumDetectors() int   { return m.numDetectors }
func (m *Matcher) NumObservables() int { return m.numObservables }

func (m *Matcher) DecodeBatch(syndromes [][]bool) ([][]bool, error) {
	ctx := context.Background()
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}
	return m.DecodeBatchContext(ctx, syndromes)
}

// DecodeBatchContext is DecodeBatch with a caller-supplied context.
func (m *Matcher) DecodeBatchContext(ctx context.Context, syndromes [][]bool) ([][]bool, error) {
	if len(syndromes) == 0 {
		return nil, nil
	}
	dir, err := os.MkdirTemp(m.cfg.TempDir, "slidewin-batch-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	row := bitpack.BytesFor(m.numDetectors)
	packed := make([]byte, len(syndromes)*row)
	for i, s := range syndromes {
		if len(s) != m.numDetectors {
			return nil, fmt.Errorf("extern: syndrome %d has %d detectors, want %d", i, len(s), m.numDetectors)
		}
		bitpack.PackInto(packed[i*row:], s)
	}
	in := filepath.Join(dir, "dets.b8")
	out := filepath.Join(dir, "obs.b8")
	if err := shotdata.WriteFile(in, shotdata.B8, packed, m.numDetectors); err != nil {
		return nil, err
	}

	args := m.expand(in, out, len(syndromes))
	start := time.Now()
	if err := run(ctx, args[0], args[1:]...); err != nil {
		return nil, err
	}
	m.log.Debug("external matcher batch",
		zap.Int("shots", len(syndromes)),
		zap.Duration("elapsed", time.Since(start)))

	preds, shots, err := shotdata.ReadFile(out, shotdata.B8, m.numObservables)
	if err != nil {
		return nil, fmt.Errorf("extern: read predictions: %w", err)
	}
	// zero-width predictions carry no bytes to count
	if m.numObservables > 0 && shots != len(syndromes) {
		return nil, fmt.Errorf("extern: %d predictions for %d syndromes", shots, len(syndromes))
	}
	oRow := bitpack.BytesFor(m.numObservables)
	res := make([][]bool, len(syndromes))
	for i := range res {
		res[i] = make([]bool, m.numObservables)
		bitpack.UnpackInto(res[i], preds[i*oRow:(i+1)*oRow])
	}
	return res, nil
}

func (m *Matcher) expand(in, out string, shots int) []string {
	r := strings.NewReplacer(
		"{dem}", m.modelPath,
		"{in}", in,
		"{out}", out,
		"{shots}", strconv.Itoa(shots),
		"{detectors}", strconv.Itoa(m.numDetectors),
		"{observables}", strconv.Itoa(m.numObservables),
	)
	args := make([]string, len(m.cfg.Command))
	for i, a := range m.cfg.Command {
		args[i] = r.Replace(a)
	}
	return args
}

func run(ctx context.Context, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	out, err := c.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %v: %w", cmd, args, ctxErr)
		}
		return fmt.Errorf("%s %v: %v\n%s", cmd, args, err, string(out))
	}
	return nil
}

var _ window.Matcher = (*Matcher)(nil)
