package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-stepform/internal/server"
)

var serveFlags struct {
	addr   string
	secure bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the onboarding wizards over HTTP",
	Long: `Serve every known flow under /onboarding/<flow>.

Sessions are signed out after the configured inactivity timeout and
countdown; the browser is then sent to logout_url.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.addr, "addr", "a", "", "Listen address (overrides listen_addr)")
	serveCmd.Flags().BoolVar(&serveFlags.secure, "secure-cookies", false, "Mark the session cookie Secure")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}
	srv, err := app.Server(server.WithSecureCookies(serveFlags.secure))
	if err != nil {
		return err
	}

	addr := app.Config.ListenAddr
	if serveFlags.addr != "" {
		addr = serveFlags.addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.Logger.Info().Str("api", app.Config.APIBaseURL).Strs("flows", app.Catalog.Names()).Msg("starting server")
	return srv.ListenAndServe(ctx, addr)
}
