package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFCD/internal/api"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/layers"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve an HTTP API that parses uploaded drawings and answers queries
on them. Documents are kept in memory only.

Endpoints:
  GET    /api/health
  POST   /api/documents                 body: FidoCadJ code
  GET    /api/documents/:id
  GET    /api/documents/:id/text?extensions=bool
  POST   /api/documents/:id/split?standard=bool
  GET    /api/documents/:id/hit?x=&y=
  GET    /api/documents/:id/msgpack
  DELETE /api/documents/:id
  GET    /api/library?prefix=`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary()
	if err != nil {
		return err
	}
	// Validate the overrides once, every document gets its own copy
	if err := cfg.ApplyLayers(layers.Standard()); err != nil {
		return err
	}

	store := api.NewStore(api.Options{
		Library:      lib,
		MaxDocuments: cfg.Server.MaxDocuments,
		Layers: func() []*layers.Layer {
			ll := layers.Standard()
			cfg.ApplyLayers(ll)
			return ll
		},
		Defaults:     cfg.Defaults,
		TextFont:     cfg.TextFont,
		TextFontSize: cfg.TextFontSize,
	})
	e := api.NewServer(api.NewHandler(store, cfg.Extensions, rootCmd.Version))

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		fmt.Printf("Serving %d macros on %s\n", len(lib), addr)
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
