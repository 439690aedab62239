package export

import (
	"context"
	"fmt"

	"github.com/ChaseRain/coverstudio/internal/domain/cover"
	"github.com/ChaseRain/coverstudio/internal/infra/logger"
	"github.com/ChaseRain/coverstudio/internal/service/transparency"
)

const DefaultBrand = "Pulmao-Livre"

// Saver persists an exported file. *storage.Service implements it.
type Saver interface {
	Enabled() bool
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type File struct {
	Name        string
	Data        []byte
	ContentType string
	// URL is set when the file was persisted.
	URL string
	// Keyed reports whether the transparency pass was applied.
	Keyed bool
}

type Exporter struct {
	saver  Saver
	brand  string
	logger *logger.Logger
}

func New(saver Saver, brand string, log *logger.Logger) *Exporter {
	if brand == "" {
		brand = DefaultBrand
	}
	return &Exporter{saver: saver, brand: brand, logger: log}
}

// FileName returns <brand>-<format>-<id>.png.
func (e *Exporter) FileName(img cover.GeneratedImage) string {
	return fmt.Sprintf("%s-%s-%s.png", e.brand, img.Format, img.ID)
}

// Export prepares img for download. Images generated with the transparency
// flag get their near-white background keyed out; if that fails the original
// payload is exported instead.
func (e *Exporter) Export(ctx context.Context, img cover.GeneratedImage) (*File, error) {
	file := &File{
		Name:        e.FileName(img),
		Data:        img.Data,
		ContentType: img.MIMEType,
	}
	if file.ContentType == "" {
		file.ContentType = "image/png"
	}

	if img.Transparent {
		keyed, err := transparency.Key(img.Data)
		if err != nil {
			e.logger.Warn("transparency pass failed, exporting original", "id", img.ID, "error", err)
		} else {
			file.Data = keyed
			file.ContentType = "image/png"
			file.Keyed = true
		}
	}

	if e.saver != nil && e.saver.Enabled() {
		url, err := e.saver.Save(ctx, file.Name, file.Data, file.ContentType)
		if err != nil {
			return nil, err
		}
		file.URL = url
	}

	e.logger.Info("image exported", "id", img.ID, "name", file.Name, "keyed", file.Keyed, "size", len(file.Data))
	return file, nil
}
