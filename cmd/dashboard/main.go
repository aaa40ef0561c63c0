package main

import (
	"log/slog"
	"os"

	"fruitdash/internal/app"
	apierrors "fruitdash/internal/errors"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// A load failure surfaces here; nothing has been served yet
	if err := application.Run(); err != nil {
		slog.Error(failureMessage(err), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// failureMessage separates a fatal data load from runtime failures
func failureMessage(err error) string {
	if apierrors.IsLoadError(err) {
		return "Demand data could not be loaded, refusing to serve"
	}
	return "Application error"
}
