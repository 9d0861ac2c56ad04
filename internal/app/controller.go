// Package app holds the application state: the current selection and the
// handles that act on it. Every entry point (web form, drop directory, CLI)
// goes through a Controller.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/oapi-codegen/runtime/types"

	"github.com/shahar-caura/plantid/internal/intake"
	"github.com/shahar-caura/plantid/internal/pipeline"
	"github.com/shahar-caura/plantid/internal/plant"
	"github.com/shahar-caura/plantid/internal/render"
	"github.com/shahar-caura/plantid/internal/view"
)

// ErrNoSelection is returned when an action needs an image and none is chosen.
var ErrNoSelection = errors.New("no image selected")

// Controller serialises all state changes behind one mutex.
type Controller struct {
	mu           sync.Mutex
	current      *plant.SelectedImage
	validator    *intake.Validator
	panes        *view.Panes
	orchestrator *pipeline.Orchestrator
	logger       *slog.Logger
}

// New returns a Controller with nothing selected.
func New(validator *intake.Validator, panes *view.Panes, orchestrator *pipeline.Orchestrator, logger *slog.Logger) *Controller {
	return &Controller{
		validator:    validator,
		panes:        panes,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Select validates file and makes it the current selection. A rejected file
// clears any previous selection.
func (c *Controller) Select(file types.File) (*plant.SelectedImage, error) {
	img, err := c.validator.Validate(file)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.current = nil
		c.panes.HidePreview()
		c.logger.Warn("image rejected", "file", file.Filename(), "error", err)
		return nil, err
	}

	c.current = img
	c.panes.ShowPreview(img.PreviewURL)
	c.logger.Info("image selected", "selection", img.ID, "file", img.File.Filename(), "size", img.File.FileSize())
	return img, nil
}

// Remove clears the selection, the preview and any result.
func (c *Controller) Remove() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.logger.Info("image removed", "selection", c.current.ID)
	}
	c.current = nil
	c.panes.HidePreview()
}

// Current returns the selected image, or nil.
func (c *Controller) Current() *plant.SelectedImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Identify submits the current selection. The outcome is rendered into the
// result pane unless the selection changed meanwhile, and is also delivered
// on the returned channel.
func (c *Controller) Identify(ctx context.Context) (<-chan plant.Outcome, error) {
	img := c.Current()
	if img == nil {
		return nil, ErrNoSelection
	}

	in := c.orchestrator.Identify(ctx, img)
	out := make(chan plant.Outcome, 1)
	go func() {
		defer close(out)
		outcome := <-in
		c.showIfCurrent(img.ID, render.HTML(outcome))
		out <- outcome
	}()
	return out, nil
}

// TestLocal runs the current selection through the local model only.
func (c *Controller) TestLocal(ctx context.Context) (<-chan pipeline.LocalReply, error) {
	img := c.Current()
	if img == nil {
		return nil, ErrNoSelection
	}

	in := c.orchestrator.TestLocal(ctx, img)
	out := make(chan pipeline.LocalReply, 1)
	go func() {
		defer close(out)
		reply := <-in
		if reply.Err != nil {
			c.showIfCurrent(img.ID, render.LocalFailure(reply.Err.Error()))
		} else {
			c.showIfCurrent(img.ID, render.Local(*reply.Result))
		}
		out <- reply
	}()
	return out, nil
}

func (c *Controller) showIfCurrent(selectionID string, v render.View) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.ID != selectionID {
		c.logger.Info("discarding result for replaced selection", "selection", selectionID)
		return
	}
	c.panes.ShowResult(v)
}
