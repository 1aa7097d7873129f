package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxDimension bounds the longer side of a prepared image.
	MaxDimension = 1280
	// JPEGQuality is the fixed lossy re-encode quality.
	JPEGQuality = 72
)

// Prepare produces the upload-optimized encoding of a picked image: longest
// side capped at MaxDimension, re-encoded as JPEG. If the image cannot be
// decoded or re-encoded the original bytes are returned untouched; a slightly
// larger upload is preferable to blocking the user.
func Prepare(raw []byte) []byte {
	out, err := reencode(raw)
	if err != nil {
		return raw
	}
	return out
}

func reencode(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty image bounds")
	}

	// Only downscale. Small images are still re-encoded at the fixed quality.
	longer := w
	if h > w {
		longer = h
	}
	if longer > MaxDimension {
		scale := float64(MaxDimension) / float64(longer)
		dw := int(float64(w)*scale + 0.5)
		dh := int(float64(h)*scale + 0.5)
		if dw < 1 {
			dw = 1
		}
		if dh < 1 {
			dh = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
