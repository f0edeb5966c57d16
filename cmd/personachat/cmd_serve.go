package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"personachat/internal/server"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API over HTTP",
	Long: `Starts the JSON API used by browser front ends.

Each browser session holds its own credential and conversation. Keys are
supplied per session via POST /api/sessions/:id/credential.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Manager:     a.newManager(),
		Catalog:     a.catalog,
		Archive:     a.archive,
		Defaults:    cfg.Generation,
		SessionIdle: cfg.GetSessionIdle(),
	})
	cmd.Printf("Serving on http://%s\n", addr)
	return srv.Run(ctx, addr)
}
