package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/observe-l/slidewin/internal/pool"
	"github.com/observe-l/slidewin/internal/rpc"
	"github.com/observe-l/slidewin/window"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		wf      windowFlags
		demPath string
		listen  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a compiled decoder over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wf.apply(cmd, &a.cfg.Window)
			if cmd.Flags().Changed("listen") {
				a.cfg.RPC.Listen = listen
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			m, err := loadModel(demPath)
			if err != nil {
				return err
			}
			opts := a.cfg.Window.Options()
			opts.Logger = a.log
			c, err := window.Compile(m, a.matcherBuilder(), opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			lis, err := net.Listen("tcp", a.cfg.RPC.Listen)
			if err != nil {
				return err
			}
			srv := rpc.NewServer(c, pool.Options{
				Workers:    a.cfg.Pool.Workers,
				ChunkShots: a.cfg.Pool.ChunkShots,
				Logger:     a.log,
			})
			var gopts []grpc.ServerOption
			if n := a.cfg.RPC.MaxMessageBytes; n > 0 {
				gopts = append(gopts, grpc.MaxRecvMsgSize(n), grpc.MaxSendMsgSize(n))
			}
			a.log.Info("serving decoder", zap.String("listen", lis.Addr().String()), zap.String("service", rpc.ServiceName))
			return rpc.Serve(ctx, lis, srv, gopts...)
		},
	}
	wf.register(cmd)
	cmd.Flags().StringVar(&demPath, "dem", "", "detector error model file")
	cmd.Flags().StringVar(&listen, "listen", ":50051", "listen address (overrides rpc.listen)")
	_ = cmd.MarkFlagRequired("dem")
	return cmd
}
