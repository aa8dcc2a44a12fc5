package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Bennexy/edms-local/internal/config"
	"github.com/Bennexy/edms-local/internal/handler"
	"github.com/Bennexy/edms-local/internal/services"
)

var (
	apiInstance http.Handler
	once        sync.Once
	initErr     error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the HTTP function. The whole document API is served behind
	// one entry point.
	functions.HTTP("DocumentAPI", handleAPI)
}

// main is required by the Go Functions Framework.
func main() {}

func handleAPI(w http.ResponseWriter, r *http.Request) {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		var cfg *config.Config
		cfg, initErr = config.Load()
		if initErr != nil {
			return
		}
		var svc *services.DocumentService
		svc, initErr = services.NewFromConfig(context.Background(), cfg)
		if initErr != nil {
			return
		}
		apiInstance = handler.New(svc).Router()
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	apiInstance.ServeHTTP(w, r)
}
