package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lawbridge/lawbridge/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render, conversation and export API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(app.Cfg, app.Store, app.Exporter, app.Log.Named("server")).Serve(ctx)
		},
	}
	cmd.Flags().String("http_addr", "", "listen address (default http_addr)")
	cmd.Flags().String("http.tls_domain", "", "serve HTTPS with an ACME certificate for this domain")
	return cmd
}
