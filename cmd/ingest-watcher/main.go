package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Bennexy/edms-local/internal/config"
	"github.com/Bennexy/edms-local/internal/services"
)

var (
	watcherInstance *services.Watcher
	once            sync.Once
	initErr         error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework routes GCS finalize
	// events here.
	functions.CloudEvent("IngestDroppedFile", ingestDroppedFile)
}

// main is required by the Go Functions Framework.
func main() {}

func ingestDroppedFile(ctx context.Context, e cloudevents.Event) error {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		var cfg *config.Config
		cfg, initErr = config.Load()
		if initErr != nil {
			return
		}
		watcherInstance, initErr = services.NewWatcher(context.Background(), cfg)
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return watcherInstance.Process(ctx, gcsEvent)
}
