package imagepkg

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	_ "golang.org/x/image/webp"

	"github.com/youruser/imagefetch/internal/logging"
)

// OutputExtension is the extension of every converted image.
const OutputExtension = ".webp"

// ConversionResult describes what a Convert call left on disk.
type ConversionResult struct {
	// Path is the converted image, empty unless conversion succeeded.
	Path string
	// Persisted reports whether the raw download reached the disk, which
	// is what counts as downloaded in the run report.
	Persisted bool
}

// Converter re-encodes downloaded images to WebP inside a run directory.
type Converter struct {
	dir     string
	quality float32
}

func NewConverter(dir string, quality float32) *Converter {
	return &Converter{dir: dir, quality: quality}
}

// Convert stores raw under a transient name derived from articleNumber and
// ext, decodes it and writes <articleNumber>.webp. The transient file is
// removed whether or not conversion succeeds. The returned result is never
// nil, so callers can tell a failed write from a failed decode.
func (c *Converter) Convert(raw []byte, ext, articleNumber string) (*ConversionResult, error) {
	res := &ConversionResult{}
	name := SafeName(articleNumber)
	rawPath := filepath.Join(c.dir, name+"_original"+ext)
	outPath := filepath.Join(c.dir, name+OutputExtension)

	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		return res, err
	}
	res.Persisted = true
	defer func() {
		if err := os.Remove(rawPath); err != nil && !os.IsNotExist(err) {
			logging.Component("converter").Warn("remove original failed", "path", rawPath, "error", err)
		}
	}()

	img, err := imaging.Open(rawPath)
	if err != nil {
		return res, err
	}
	if err := c.encode(img, outPath); err != nil {
		os.Remove(outPath)
		return res, err
	}
	res.Path = outPath
	return res, nil
}

func (c *Converter) encode(img image.Image, path string) error {
	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, c.quality)
	if err != nil {
		return fmt.Errorf("webp options: %w", err)
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := webp.Encode(fp, img, opts); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// SafeName turns an article number into a usable file name. Path
// separators become underscores so every output stays in the run directory.
func SafeName(articleNumber string) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(strings.TrimSpace(articleNumber))
	if name == "" || name == "." || name == ".." {
		return "_" + name
	}
	return name
}
