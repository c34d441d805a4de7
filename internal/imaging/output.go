package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/tiff"
)

// EncodedImage is an in-band image for MCP tool results.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncoderFor returns the encoder matching the extension of path.
func EncoderFor(path string) (imgio.Encoder, error) {
	switch FormatFromPath(path) {
	case "png":
		return imgio.PNGEncoder(), nil
	case "jpeg":
		return imgio.JPEGEncoder(95), nil
	case "bmp":
		return imgio.BMPEncoder(), nil
	case "tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
		}, nil
	}
	return nil, fmt.Errorf("unsupported output format for %s", path)
}

// Save writes img to path in the format implied by its extension.
func Save(path string, img image.Image) error {
	enc, err := EncoderFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := enc(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// EncodeBase64PNG encodes img as a base64 PNG.
func EncodeBase64PNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	b := img.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
