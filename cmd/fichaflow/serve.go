package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/massanella/fichaflow"
	httpAdapter "github.com/massanella/fichaflow/internal/adapters/http"
	"github.com/massanella/fichaflow/internal/logging"
	"github.com/massanella/fichaflow/pkg/adapters/file"
	"github.com/massanella/fichaflow/pkg/adapters/memory"
	"github.com/massanella/fichaflow/pkg/adapters/redis"
	"github.com/massanella/fichaflow/pkg/catalog"
	"github.com/massanella/fichaflow/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP entry-editing server",
	Long:  `Starts the engine in server mode, exposing entry sessions as a JSON API over HTTP with Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		templatesDir, _ := cmd.Flags().GetString("templates")
		entriesDir, _ := cmd.Flags().GetString("entries")
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		catalogPath, _ := cmd.Flags().GetString("catalog")

		logger := logging.New(slog.LevelInfo)

		var store ports.EntryStore
		if redisAddr != "" {
			store = redis.New(redisAddr, "", 0)
		} else {
			store = file.NewStore(entriesDir)
		}

		cat, err := serveCatalog(catalogPath)
		if err != nil {
			fmt.Printf("Error loading catalog: %v\n", err)
			os.Exit(1)
		}

		engine, err := fichaflow.New(
			fichaflow.WithLoader(file.NewLoader(templatesDir)),
			fichaflow.WithStore(store),
			fichaflow.WithCatalog(cat),
			fichaflow.WithLogger(logger),
		)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: httpAdapter.NewHandler(engine, logger),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", srv.Addr, "templates", templatesDir)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
			}
		}
	},
}

func serveCatalog(path string) (ports.Catalog, error) {
	if path == "" {
		return memory.NewCatalog(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var treatments []catalog.Treatment
	if err := json.Unmarshal(data, &treatments); err != nil {
		return nil, err
	}
	return memory.NewCatalog(treatments), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for entry storage (empty = filesystem)")
	serveCmd.Flags().String("catalog", "", "JSON file with treatment catalog records")
}
