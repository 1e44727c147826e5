package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ZanzyTHEbar/hybridchat/hchat/server"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := wireApp(ctx, opts.configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			sc := a.cfg.Server
			if addr != "" {
				sc.Addr = addr
			}

			srv := server.New(server.Config{
				Addr:            sc.Addr,
				ReadTimeout:     sc.ReadTimeout,
				WriteTimeout:    sc.WriteTimeout,
				ShutdownTimeout: sc.ShutdownTimeout,
			}, a.service, a.logger)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}
