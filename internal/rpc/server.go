package rpc

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/observe-l/slidewin/internal/pool"
	"github.com/observe-l/slidewin/internal/wire"
	"github.com/observe-l/slidewin/window"
)

// Info describes the decoder a server is bound to.
type Info struct {
	Rounds            int
	DetectorsPerRound int
	WindowSize        int
	Overlap           int
	Detectors         int
	Observables       int
	Windows           int
}

func InfoOf(c *window.Compiled) Info {
	return Info{
		Rounds:            c.NumRounds(),
		DetectorsPerRound: c.DetectorsPerRound(),
		WindowSize:        c.WindowSize(),
		Overlap:           c.Overlap(),
		Detectors:         c.NumDetectors(),
		Observables:       c.NumObservables(),
		Windows:           len(c.Windows()),
	}
}

func (i Info) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"rounds":              i.Rounds,
		"detectors_per_round": i.DetectorsPerRound,
		"window_size":         i.WindowSize,
		"overlap":             i.Overlap,
		"detectors":           i.Detectors,
		"observables":         i.Observables,
		"windows":             i.Windows,
	})
}

func infoFromStruct(s *structpb.Struct) Info {
	get := func(k string) int { return int(s.GetFields()[k].GetNumberValue()) }
	return Info{
		Rounds:            get("rounds"),
		DetectorsPerRound: get("detectors_per_round"),
		WindowSize:        get("window_size"),
		Overlap:           get("overlap"),
		Detectors:         get("detectors"),
		Observables:       get("observables"),
		Windows:           get("windows"),
	}
}

// Server decodes batches with one compiled decoder shared by the pool
// workers, so its matcher must be safe for concurrent use.
type Server struct {
	compiled *window.Compiled
	info     Info
	pool     pool.Options
	log      *zap.Logger
}

func NewServer(c *window.Compiled, opts pool.Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{compiled: c, info: InfoOf(c), pool: opts, log: log}
}

func (s *Server) Info(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	st, err := s.info.toStruct()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

func (s *Server) Decode(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	f, err := wire.Decode(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if f.Kind != wire.KindDetections {
		return nil, status.Errorf(codes.InvalidArgument, "frame kind %d is not detections", f.Kind)
	}
	if int(f.BitsPerShot) != s.info.Detectors {
		return nil, status.Errorf(codes.InvalidArgument, "frame has %d detectors per shot, decoder expects %d", f.BitsPerShot, s.info.Detectors)
	}
	shots := int(f.Shots)
	newDecoder := func() (window.CompiledDecoder, error) { return s.compiled, nil }
	preds, err := pool.Run(ctx, s.pool, newDecoder, f.Payload, shots)
	if err != nil {
		s.log.Warn("decode request failed", zap.Int("shots", shots), zap.Error(err))
		return nil, toStatus(err)
	}
	out, err := wire.Encode(wire.KindPredictions, preds, shots, s.info.Observables)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.Bytes(out), nil
}

func toStatus(err error) error {
	switch window.Classify(err) {
	case window.CodeConfig, window.CodeShape:
		return status.Error(codes.InvalidArgument, err.Error())
	case window.CodeCancel:
		if errors.Is(err, context.DeadlineExceeded) {
			return status.Error(codes.DeadlineExceeded, err.Error())
		}
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// Serve runs srv on lis until ctx is done, then stops gracefully.
func Serve(ctx context.Context, lis net.Listener, srv *Server, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	Register(gs, srv)
	errc := make(chan error, 1)
	go func() { errc <- gs.Serve(lis) }()
	select {
	case <-ctx.Done():
		gs.GracefulStop()
		<-errc
		return nil
	case err := <-errc:
		return err
	}
}

var _ DecoderServer = (*Server)(nil)
