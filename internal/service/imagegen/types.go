package imagegen

import (
	"context"

	"github.com/ChaseRain/coverstudio/internal/domain/cover"
)

// Call is one outbound request for a single concrete format.
type Call struct {
	Model       string
	Prompt      string
	AspectRatio cover.AspectRatio
	Reference   *cover.ReferenceImage
}

type Image struct {
	Data     []byte
	MIMEType string
}

// Generator is implemented by every Gemini backend.
type Generator interface {
	Generate(ctx context.Context, call Call) (*Image, error)
}

// KeySource resolves the API key when a call is made.
type KeySource func() string

// StaticKey returns a KeySource that always yields key.
func StaticKey(key string) KeySource {
	return func() string { return key }
}
