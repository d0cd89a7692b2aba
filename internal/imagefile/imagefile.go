// Package imagefile fetches generated images and writes them to disk as PNG or
// JPEG.
package imagefile

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"kouri/internal/fileutil"
	"kouri/internal/services"
)

// MaxDownloadBytes bounds a single image download.
const MaxDownloadBytes int64 = 32 << 20

// Image is a downloaded, decoded image.
type Image struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Download fetches url and decodes the payload to confirm it is an image.
func Download(ctx context.Context, client *http.Client, url string) (Image, error) {
	const op = "download image"
	var empty Image
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return empty, fmt.Errorf("%s: new request: %w", op, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return empty, services.TransportFailure(op, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if err != nil {
		return empty, services.TransportFailure(op, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return empty, services.StatusFailure(op, resp.StatusCode, nil)
	}
	if int64(len(data)) > MaxDownloadBytes {
		return empty, fmt.Errorf("%s: image exceeds %d bytes", op, MaxDownloadBytes)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return empty, fmt.Errorf("%s: decode: %w", op, err)
	}
	return Image{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Save writes img to path. Paths ending in .jpg or .jpeg are written as JPEG;
// everything else as PNG. Bytes already in the target format are copied as is.
func Save(path string, img Image) error {
	target := targetFormat(path)
	data := img.Data
	if img.Format != target {
		decoded, _, err := image.Decode(bytes.NewReader(img.Data))
		if err != nil {
			return fmt.Errorf("save image: decode: %w", err)
		}
		var buf bytes.Buffer
		switch target {
		case "jpeg":
			err = jpeg.Encode(&buf, decoded, &jpeg.Options{Quality: 95})
		default:
			err = png.Encode(&buf, decoded)
		}
		if err != nil {
			return fmt.Errorf("save image: encode %s: %w", target, err)
		}
		data = buf.Bytes()
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	return nil
}

func targetFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	default:
		return "png"
	}
}
