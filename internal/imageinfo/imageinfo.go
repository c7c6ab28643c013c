// Package imageinfo inspects base64 image attachments. It reads only the
// image header: format and dimensions, never pixel content.
package imageinfo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/starford/virtualta/internal/apperr"
)

// MaxDimension bounds either side of an accepted image.
const MaxDimension = 4096

// MaxEncodedSize bounds the base64 payload accepted for inspection.
const MaxEncodedSize = 16 << 20

var supported = map[string]bool{"jpeg": true, "png": true, "gif": true, "bmp": true, "webp": true}

// Info describes an attachment.
type Info struct {
	Format     string `json:"format"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Screenshot bool   `json:"screenshot"`
	TextHeavy  bool   `json:"text_heavy"`
}

// Inspect decodes a base64 payload (optionally a data: URL) and reads its
// image header.
func Inspect(encoded string) (Info, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return Info{}, fmt.Errorf("imageinfo: empty payload: %w", apperr.ErrInvalid)
	}
	if len(encoded) > MaxEncodedSize {
		return Info{}, fmt.Errorf("imageinfo: payload exceeds %d bytes: %w", MaxEncodedSize, apperr.ErrInvalid)
	}
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.IndexByte(encoded, ','); i >= 0 {
			encoded = encoded[i+1:]
		}
	}

	data, err := decodeBase64(encoded)
	if err != nil {
		return Info{}, fmt.Errorf("imageinfo: decode base64: %w", errors.Join(apperr.ErrInvalid, err))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("imageinfo: read header: %w", errors.Join(apperr.ErrInvalid, err))
	}
	if !supported[format] {
		return Info{}, fmt.Errorf("imageinfo: unsupported format %q: %w", format, apperr.ErrInvalid)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return Info{}, fmt.Errorf("imageinfo: dimensions %dx%d out of range: %w", cfg.Width, cfg.Height, apperr.ErrInvalid)
	}

	return Info{
		Format:     format,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Screenshot: likelyScreenshot(cfg.Width, cfg.Height),
		TextHeavy:  cfg.Width > 400 && cfg.Height > 300,
	}, nil
}

// Context renders a one-line description of the attachment.
func (i Info) Context() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Image attachment detected: %dx%d %s image", i.Width, i.Height, strings.ToUpper(i.Format))
	if i.Screenshot {
		b.WriteString(". This appears to be a screenshot, possibly showing code, error messages, or assignment questions.")
	}
	if i.TextHeavy {
		b.WriteString(" It appears to contain text content, possibly code or assignment questions.")
	}
	return b.String()
}

func likelyScreenshot(w, h int) bool {
	if w > 800 && h > 600 {
		return true
	}
	ratio := float64(w) / float64(h)
	return ratio > 1.3 && ratio < 2.0
}

// decodeBase64 accepts padded and unpadded standard or URL-safe alphabets.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	var firstErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
