package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"docrag/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose search over HTTP",
	Long: `Serve starts an HTTP server with a /api/search endpoint backed by the
local corpus and the configured vector index. Set serve.api_key_env in the
config to require a bearer token.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	search, closeStore, err := buildSearch(cfg, GetRootDir())
	if err != nil {
		return err
	}
	defer closeStore()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.Logging.Level),
	}))

	apiKey := ""
	if cfg.Serve.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.Serve.APIKeyEnv)
		if apiKey == "" {
			return fmt.Errorf("serve.api_key_env is set but %s is empty", cfg.Serve.APIKeyEnv)
		}
	}

	addr := cfg.Serve.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := api.NewServer(search, logger, apiKey)
	logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, server)
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
