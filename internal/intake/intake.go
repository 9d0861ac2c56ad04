package intake

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"

	"github.com/shahar-caura/plantid/internal/plant"
)

var (
	// ErrTooLarge indicates the file exceeds the size limit.
	ErrTooLarge = errors.New("too large")

	// ErrEmpty indicates the file has no content.
	ErrEmpty = errors.New("empty")
)

// RejectedError reports why a file was not accepted.
type RejectedError struct {
	Filename string
	Size     int64
	Reason   error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected %q (%d bytes): %s", e.Filename, e.Size, e.Reason)
}

func (e *RejectedError) Unwrap() error { return e.Reason }

// Validator checks a chosen file and produces its preview.
type Validator struct {
	maxBytes int64
}

// New returns a Validator enforcing plant.MaxImageBytes.
func New() *Validator {
	return &Validator{maxBytes: plant.MaxImageBytes}
}

// Validate accepts or rejects file. Accepted files come back as a
// SelectedImage with a data URL preview; rejections are *RejectedError.
func (v *Validator) Validate(file types.File) (*plant.SelectedImage, error) {
	size := file.FileSize()
	if size > v.maxBytes {
		return nil, &RejectedError{Filename: file.Filename(), Size: size, Reason: ErrTooLarge}
	}

	data, err := file.Bytes()
	if err != nil {
		return nil, fmt.Errorf("intake: reading %q: %w", file.Filename(), err)
	}
	// Multipart headers can under-report; trust the bytes.
	if int64(len(data)) > v.maxBytes {
		return nil, &RejectedError{Filename: file.Filename(), Size: int64(len(data)), Reason: ErrTooLarge}
	}
	if len(data) == 0 {
		return nil, &RejectedError{Filename: file.Filename(), Size: 0, Reason: ErrEmpty}
	}

	// Multipart-backed files vanish when their request ends.
	var held types.File
	held.InitFromBytes(data, file.Filename())

	return &plant.SelectedImage{
		ID:         uuid.NewString(),
		File:       held,
		PreviewURL: DataURL(data),
	}, nil
}

// DataURL encodes data as a base64 data URL with a sniffed MIME type.
func DataURL(data []byte) string {
	return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}
