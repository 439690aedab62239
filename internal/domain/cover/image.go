package cover

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultMIMEType = "image/png"

// ReferenceImage is an uploaded image the model edits instead of generating from scratch.
type ReferenceImage struct {
	Data     []byte
	MIMEType string
}

// ParseDataURL decodes a browser data URL (data:<mime>;base64,<payload>).
// A bare base64 payload is accepted and its MIME type sniffed.
func ParseDataURL(v string) (*ReferenceImage, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, fmt.Errorf("empty image payload")
	}

	mimeType := ""
	payload := v
	if strings.HasPrefix(v, "data:") {
		header, body, ok := strings.Cut(v, ",")
		if !ok {
			return nil, fmt.Errorf("invalid data URL format")
		}
		payload = body
		mimeType = defaultMIMEType
		if meta := strings.TrimPrefix(header, "data:"); meta != "" {
			if m, _, _ := strings.Cut(meta, ";"); m != "" {
				mimeType = m
			}
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return &ReferenceImage{Data: data, MIMEType: mimeType}, nil
}

// GenerationRequest is built per user action and may expand into several
// per-format calls.
type GenerationRequest struct {
	Style       Style
	Theme       Theme
	Format      Format
	Title       string
	Subtitle    string
	Description string
	Reference   *ReferenceImage
	Transparent bool
}

func (r GenerationRequest) Validate() error {
	if !r.Style.Valid() {
		return fmt.Errorf("unknown style %q", r.Style)
	}
	if !r.Theme.Valid() {
		return fmt.Errorf("unknown theme %q", r.Theme)
	}
	if !r.Format.Valid() {
		return fmt.Errorf("unknown format %q", r.Format)
	}
	return nil
}

// GeneratedImage is created once per successful call and never mutated.
type GeneratedImage struct {
	ID          string
	Data        []byte
	MIMEType    string
	CreatedAt   time.Time
	Prompt      string
	Title       string
	Style       Style
	Theme       Theme
	Format      Format
	Transparent bool
}

func (g GeneratedImage) DataURL() string {
	mimeType := g.MIMEType
	if mimeType == "" {
		mimeType = defaultMIMEType
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(g.Data))
}
