// Package imaging turns inline QR image payloads into PNG files on disk.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/erazemk/inventaris/internal/ident"
)

// MaxDimension is the maximum width or height for stored QR images.
const MaxDimension = 1024

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

var (
	// ErrNotInline is returned when a reference is not a data URL.
	ErrNotInline = errors.New("not an inline image payload")
	// ErrInvalidImage is returned when an inline payload is not a usable image.
	ErrInvalidImage = errors.New("invalid qr image")
)

// IsInline reports whether ref is an inline image payload rather than a
// stored reference.
func IsInline(ref string) bool {
	return strings.HasPrefix(ref, "data:image/")
}

// DecodeDataURL extracts the bytes of a base64 data URL.
func DecodeDataURL(ref string) ([]byte, error) {
	if !IsInline(ref) {
		return nil, ErrNotInline
	}
	header, payload, ok := strings.Cut(ref, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("malformed data URL")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	return data, nil
}

// Normalize validates image data by sniffing bytes, downscales it if larger
// than MaxDimension and re-encodes it as PNG. QR codes must stay lossless
// and sharp, so scaling is nearest-neighbour.
func Normalize(data []byte) ([]byte, error) {
	// Sniff actual MIME type from bytes (not trusting the data URL header).
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format: %s (only JPEG and PNG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale resizes the image so neither dimension exceeds maxDim.
// Returns the original image if already within bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// FileStore writes QR images to Dir as <item id>.png and hands out
// references under URLPrefix.
type FileStore struct {
	Dir       string
	URLPrefix string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir, urlPrefix string) *FileStore {
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &FileStore{Dir: dir, URLPrefix: urlPrefix}
}

// Staged is a QR image written next to its final name. The reference does
// not point at it until Commit.
type Staged struct {
	Ref string

	tmp       string
	final     string
	backup    string
	committed bool
}

// Stage decodes and normalizes the inline payload for itemID and writes it
// to a temporary file in Dir. The caller must finish with Commit and
// Release, or with Revert.
func (s *FileStore) Stage(_ context.Context, itemID, payload string) (*Staged, error) {
	name, err := fileName(itemID)
	if err != nil {
		return nil, err
	}

	data, err := DecodeDataURL(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	data, err = Normalize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating barcode dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, name+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating qr image: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("writing qr image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("closing qr image: %w", err)
	}

	return &Staged{
		Ref:   s.URLPrefix + name,
		tmp:   tmp.Name(),
		final: filepath.Join(s.Dir, name),
	}, nil
}

// Commit moves the staged image to its final name. An image already there
// is set aside until Release or Revert.
func (st *Staged) Commit() error {
	backup := st.tmp + ".prev"
	switch err := os.Rename(st.final, backup); {
	case err == nil:
		st.backup = backup
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("setting aside previous qr image: %w", err)
	}

	if err := os.Rename(st.tmp, st.final); err != nil {
		st.restore()
		return fmt.Errorf("storing qr image: %w", err)
	}
	st.committed = true
	return nil
}

// Release drops the previous image kept by Commit.
func (st *Staged) Release() {
	if st.backup != "" {
		os.Remove(st.backup)
		st.backup = ""
	}
}

// Revert undoes Commit, putting the previous image back. Before Commit it
// only removes the staged file.
func (st *Staged) Revert() {
	if !st.committed {
		os.Remove(st.tmp)
		return
	}
	st.committed = false
	if st.backup == "" {
		os.Remove(st.final)
		return
	}
	st.restore()
}

func (st *Staged) restore() {
	if st.backup == "" {
		return
	}
	os.Remove(st.final)
	os.Rename(st.backup, st.final)
	st.backup = ""
}

// Discard removes the stored image for itemID. A missing file is not an error.
func (s *FileStore) Discard(itemID string) error {
	name, err := fileName(itemID)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing qr image: %w", err)
	}
	return nil
}

// fileName validates itemID so it can never escape Dir.
func fileName(itemID string) (string, error) {
	if _, err := ident.Parse(itemID); err != nil {
		return "", err
	}
	return itemID + ".png", nil
}
