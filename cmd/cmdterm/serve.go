package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"cmdterm/internal/logging"
	"cmdterm/internal/server"
)

func newServeCmd(a *app, use, short string, ui bool) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.ListenHost = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			opts := server.Options{
				Executor: a.newExecutor(),
				Logger:   a.logger,
				UI:       ui,
			}
			if store := a.openHistory(); store != nil {
				defer store.Close()
				opts.History = store
			}
			srv, err := server.New(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := net.JoinHostPort(a.cfg.ListenHost, strconv.Itoa(a.cfg.Port))
			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cmdterm %s listening at http://%s\n", use, listener.Addr())
			logging.UserLog("%s server listening on %s", use, listener.Addr())
			return srv.Serve(ctx, listener)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")
	return cmd
}
