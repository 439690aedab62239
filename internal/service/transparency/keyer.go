// Package transparency turns near-white backgrounds into transparent alpha
// for exported images.
package transparency

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/ChaseRain/coverstudio/pkg/errors"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Threshold is exclusive: a channel must be strictly brighter to count as white.
const Threshold = 230

// KeyImage returns a non-premultiplied copy of src where every pixel whose
// red, green and blue all exceed Threshold has alpha 0. Other pixels are
// copied unchanged. Edges are not anti-aliased.
func KeyImage(src image.Image) *image.NRGBA {
	dst := imaging.Clone(src)
	pix := dst.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i] > Threshold && pix[i+1] > Threshold && pix[i+2] > Threshold {
			pix[i+3] = 0
		}
	}
	return dst
}

// Key decodes data, keys out near-white pixels and re-encodes the result as
// PNG. When data cannot be processed the original bytes are returned
// together with a DECODE_FAILED error, which callers may treat as non-fatal.
func Key(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, errors.Wrap(err, errors.ErrCodeDecodeFailed, "failed to decode image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, KeyImage(src)); err != nil {
		return data, errors.Wrap(err, errors.ErrCodeDecodeFailed, "failed to encode keyed image")
	}
	return buf.Bytes(), nil
}
