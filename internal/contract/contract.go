// Package contract checks backend responses against the embedded OpenAPI
// description of the classification service. Mismatches are reported, not
// enforced: the interpreter copes with drift, but operators want to see it.
package contract

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

//go:embed backend.yaml
var backendSpec []byte

// Validator validates responses of known backend operations.
type Validator struct {
	doc *openapi3.T
}

// Load parses and validates the embedded backend description.
func Load(ctx context.Context) (*Validator, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(backendSpec)
	if err != nil {
		return nil, fmt.Errorf("contract: loading backend description: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("contract: invalid backend description: %w", err)
	}
	return &Validator{doc: doc}, nil
}

// CheckResponse validates a response to method+path. Unknown operations
// are an error; statuses the description does not list are accepted.
func (v *Validator) CheckResponse(ctx context.Context, method, path string, status int, header http.Header, body []byte) error {
	pathItem := v.doc.Paths.Value(path)
	if pathItem == nil {
		return fmt.Errorf("contract: unknown path %q", path)
	}
	op := pathItem.GetOperation(method)
	if op == nil {
		return fmt.Errorf("contract: no %s operation on %q", method, path)
	}

	req, err := http.NewRequestWithContext(ctx, method, path, nil)
	if err != nil {
		return fmt.Errorf("contract: building request: %w", err)
	}
	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request: req,
			Route: &routers.Route{
				Spec:      v.doc,
				Path:      path,
				PathItem:  pathItem,
				Method:    method,
				Operation: op,
			},
			Options: &openapi3filter.Options{MultiError: true},
		},
		Status: status,
		Header: header,
		Body:   io.NopCloser(bytes.NewReader(body)),
		Options: &openapi3filter.Options{
			MultiError:            true,
			IncludeResponseStatus: false,
		},
	}
	if err := openapi3filter.ValidateResponse(ctx, input); err != nil {
		return fmt.Errorf("contract: %s %s: %w", method, path, err)
	}
	return nil
}
