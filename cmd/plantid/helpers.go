package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oapi-codegen/runtime/types"
	"github.com/spf13/cobra"

	"github.com/shahar-caura/plantid/internal/app"
	"github.com/shahar-caura/plantid/internal/config"
	"github.com/shahar-caura/plantid/internal/contract"
	"github.com/shahar-caura/plantid/internal/intake"
	"github.com/shahar-caura/plantid/internal/pipeline"
	"github.com/shahar-caura/plantid/internal/plant"
	"github.com/shahar-caura/plantid/internal/provider/plantapi"
	"github.com/shahar-caura/plantid/internal/view"
)

// --- Dynamic completions ---

var imageExtensions = []string{"jpg", "jpeg", "png", "gif", "webp", "bmp"}

func completeImageFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return imageExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// --- Wiring ---

type wiring struct {
	client     *plantapi.Client
	panes      *view.Panes
	controller *app.Controller
}

// wire builds the backend client and the controller stack. notifier may be nil.
func wire(ctx context.Context, cfg *config.Config, notifier view.Notifier, logger *slog.Logger) (*wiring, error) {
	client := plantapi.New(cfg.Backend.BaseURL, plantapi.Paths{
		Identify:  cfg.Backend.IdentifyPath,
		TestLocal: cfg.Backend.TestLocalPath,
		ModelInfo: cfg.Backend.ModelInfoPath,
	}, logger)

	if cfg.Backend.ValidateResponses {
		v, err := contract.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading backend contract: %w", err)
		}
		client.SetChecker(v)
	}

	panes := view.New(notifier)
	orch := pipeline.New(client, panes, logger)
	return &wiring{
		client:     client,
		panes:      panes,
		controller: app.New(intake.New(), panes, orch, logger),
	}, nil
}

// selectPath reads an image from disk and makes it the current selection.
func selectPath(c *app.Controller, path string) (*plant.SelectedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	var file types.File
	file.InitFromBytes(data, filepath.Base(path))
	img, err := c.Select(file)
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", path, err)
	}
	return img, nil
}
