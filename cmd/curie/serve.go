package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/curie/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			engine, src, err := a.engine(ctx, reg)
			if err != nil {
				return err
			}

			opts := []server.Option{server.WithLogger(a.logger), server.WithGatherer(reg),
				server.WithMaxUploadBytes(a.cfg.Server.MaxUploadBytes)}
			if store, ok := src.(server.DocumentStore); ok {
				opts = append(opts, server.WithDocumentStore(store))
			}

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			return server.NewServer(engine, addr, opts...).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
