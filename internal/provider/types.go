package provider

import (
	"context"

	"github.com/shahar-caura/plantid/internal/plant"
)

// Response is a raw backend reply. Body is returned undecoded; its shape is
// interpreted by the caller.
type Response struct {
	Status    int
	RequestID string
	Body      []byte
}

// Classifier submits images to the plant classification service.
type Classifier interface {
	Identify(ctx context.Context, img *plant.SelectedImage) (*Response, error)
	TestLocal(ctx context.Context, img *plant.SelectedImage) (*Response, error)
}

// ModelInfoSource fetches metadata about the local model.
type ModelInfoSource interface {
	ModelInfo(ctx context.Context) (*plant.ModelInfo, error)
}
