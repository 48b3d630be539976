// Package export packages a run's images for review: a PDF with one page per
// shot and a flat ZIP archive, optionally published to object storage.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"

	serrors "github.com/five82/shotcut/internal/errors"
)

// documentQuality is the JPEG quality images are re-encoded at before
// embedding.
const documentQuality = 95

// Document builds a PDF with one page per image, in the order given. Each
// page is sized to its image at one point per pixel.
func Document(ctx context.Context, imagePaths []string) ([]byte, error) {
	if len(imagePaths) == 0 {
		return nil, serrors.NewEmptyCatalogError("no images to put in document")
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("shotcut", true)

	for i, path := range imagePaths {
		if err := ctx.Err(); err != nil {
			return nil, serrors.NewCancelledError(err)
		}

		img, err := imaging.Open(path)
		if err != nil {
			return nil, serrors.NewIOError(fmt.Sprintf("cannot decode image %s", path), err)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(documentQuality)); err != nil {
			return nil, serrors.NewIOError(fmt.Sprintf("cannot re-encode image %s", path), err)
		}

		size := img.Bounds().Size()
		w, h := float64(size.X), float64(size.Y)
		name := fmt.Sprintf("page-%d", i+1)
		opts := fpdf.ImageOptions{ImageType: "JPG"}

		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, serrors.NewIOError("failed to render document", err)
	}
	return out.Bytes(), nil
}
