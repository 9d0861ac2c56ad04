package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shahar-caura/plantid/internal/interpret"
	"github.com/shahar-caura/plantid/internal/plant"
	"github.com/shahar-caura/plantid/internal/provider"
)

// Loading toggles the loading indicator.
type Loading interface {
	BeginLoading()
	EndLoading()
}

// LocalReply is the result of a local-model test. Exactly one field is set.
type LocalReply struct {
	Result *plant.LocalTestResult
	Err    error
}

// Orchestrator submits selected images to the classifier and turns the
// replies into outcomes. Every call shows the loading indicator before it
// returns and hides it exactly once, before the reply is delivered.
type Orchestrator struct {
	classifier provider.Classifier
	loading    Loading
	logger     *slog.Logger
}

// New returns an Orchestrator.
func New(classifier provider.Classifier, loading Loading, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{classifier: classifier, loading: loading, logger: logger}
}

// Identify submits img for full identification. The returned channel yields
// one outcome and is then closed.
func (o *Orchestrator) Identify(ctx context.Context, img *plant.SelectedImage) <-chan plant.Outcome {
	out := make(chan plant.Outcome, 1)
	o.loading.BeginLoading()

	go func() {
		defer close(out)

		outcome := o.identify(ctx, img)
		o.logger.Info("identification finished", "selection", img.ID, "outcome", Kind(outcome))
		out <- outcome
	}()

	return out
}

func (o *Orchestrator) identify(ctx context.Context, img *plant.SelectedImage) plant.Outcome {
	defer o.loading.EndLoading()

	resp, err := o.classifier.Identify(ctx, img)
	if err != nil {
		o.logger.Error("identify request failed", "selection", img.ID, "error", err)
		return plant.TransportFailure{Message: err.Error()}
	}

	outcome, err := interpret.Interpret(resp.Body)
	if err != nil {
		o.logger.Error("identify response unreadable", "selection", img.ID, "request_id", resp.RequestID, "status", resp.Status, "error", err)
		return plant.TransportFailure{Message: err.Error()}
	}
	return outcome
}

// TestLocal submits img to the local-model test endpoint. The returned
// channel yields one reply and is then closed.
func (o *Orchestrator) TestLocal(ctx context.Context, img *plant.SelectedImage) <-chan LocalReply {
	out := make(chan LocalReply, 1)
	o.loading.BeginLoading()

	go func() {
		defer close(out)

		result, err := o.testLocal(ctx, img)
		if err != nil {
			o.logger.Error("local test failed", "selection", img.ID, "error", err)
			out <- LocalReply{Err: err}
			return
		}
		o.logger.Info("local test finished", "selection", img.ID, "is_plant", result.IsPlant, "detected_as", result.DetectedAs)
		out <- LocalReply{Result: result}
	}()

	return out
}

func (o *Orchestrator) testLocal(ctx context.Context, img *plant.SelectedImage) (*plant.LocalTestResult, error) {
	defer o.loading.EndLoading()

	resp, err := o.classifier.TestLocal(ctx, img)
	if err != nil {
		return nil, err
	}

	var result plant.LocalTestResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("pipeline: decoding local test response: %w", err)
	}
	return &result, nil
}

// Kind names an outcome variant for logs.
func Kind(o plant.Outcome) string {
	switch o.(type) {
	case plant.Success:
		return "success"
	case plant.PartialFailure:
		return "partial_failure"
	case plant.EmptyResult:
		return "empty"
	case plant.TransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}
