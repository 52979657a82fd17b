// Package pool decodes independent shots on several workers, each with its
// own compiled decoder.
package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/observe-l/slidewin/internal/bitpack"
	"github.com/observe-l/slidewin/window"
)

type Options struct {
	Workers    int // decode workers (default 1)
	ChunkShots int // shots per work item (default 1024)
	Logger     *zap.Logger
}

func (o *Options) setDefaults() {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.ChunkShots <= 0 {
		o.ChunkShots = 1024
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// NewDecoderFunc returns a fresh decoder for one worker.
type NewDecoderFunc func() (window.CompiledDecoder, error)

// Run decodes numShots bit-packed shots and returns the packed predictions in
// input order. Shots are split into disjoint chunks; a failing chunk cancels
// the rest and its error names the absolute shot index.
func Run(ctx context.Context, opts Options, newDecoder NewDecoderFunc, packed []byte, numShots int) ([]byte, error) {
	opts.setDefaults()
	log, chunk := opts.Logger, opts.ChunkShots
	first, err := newDecoder()
	if err != nil {
		return nil, err
	}
	inBytes := bitpack.BytesFor(first.NumDetectors())
	outBytes := bitpack.BytesFor(first.NumObservables())
	if numShots < 0 || len(packed) != numShots*inBytes {
		return nil, &window.ShapeError{What: "bit-packed detection bytes", Got: len(packed), Want: max(numShots, 0) * inBytes}
	}
	out := make([]byte, numShots*outBytes)
	if numShots == 0 {
		return out, nil
	}
	numChunks := (numShots + chunk - 1) / chunk
	workers := min(opts.Workers, numChunks)

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	work := make(chan int)
	g.Go(func() error {
		defer close(work)
		for lo := 0; lo < numShots; lo += chunk {
			select {
			case work <- lo:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		w := w
		dec := first
		g.Go(func() error {
			if w > 0 {
				var err error
				if dec, err = newDecoder(); err != nil {
					return fmt.Errorf("worker %d: %w", w, err)
				}
			}
			for lo := range work {
				n := min(chunk, numShots-lo)
				preds, err := dec.DecodeShotsBitPacked(packed[lo*inBytes:(lo+n)*inBytes], n)
				if err != nil {
					return offsetShot(err, lo)
				}
				copy(out[lo*outBytes:(lo+n)*outBytes], preds)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("decoded shots",
		zap.Int("shots", numShots),
		zap.Int("workers", workers),
		zap.Int("chunks", numChunks),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// offsetShot rebases a chunk-relative shot index.
func offsetShot(err error, lo int) error {
	var de *window.DecodeError
	if !errors.As(err, &de) || de.Shot < 0 {
		return err
	}
	cp := *de
	cp.Shot += lo
	return &cp
}
