package shotcut

import (
	"context"

	"github.com/five82/shotcut/internal/export"
	"github.com/five82/shotcut/internal/shots"
	"github.com/five82/shotcut/internal/validation"
)

// ExportDocument renders one PDF page per image, in the given order.
// It fails with ErrEmptyCatalog when imagePaths is empty.
func ExportDocument(ctx context.Context, imagePaths []string) ([]byte, error) {
	return export.Document(ctx, imagePaths)
}

// ExportArchive zips every image found under dir with flattened names.
func ExportArchive(ctx context.Context, dir string) ([]byte, error) {
	return export.Archive(ctx, dir)
}

// Manifest is the shots.json a run writes beside its images.
type Manifest = shots.Manifest

// LoadManifest reads the manifest in dir and rebuilds its catalog.
func LoadManifest(dir string) (*Manifest, *Catalog, error) {
	return shots.LoadManifest(dir)
}

// LoadCatalog rebuilds the catalog a previous run left in dir.
func LoadCatalog(dir string) (*Catalog, error) {
	_, catalog, err := shots.LoadManifest(dir)
	return catalog, err
}

// Verify checks the run's images against the source dimensions, the
// catalog's ids and timecodes, and the files left in the output directory.
func (r *Run) Verify() *validation.Result {
	dims := [2]int{r.Video.Width, r.Video.Height}
	count := len(r.Intervals) - len(r.Skipped)
	return validation.VerifyCatalog(r.Catalog, validation.Options{
		ExpectedDimensions: &dims,
		ExpectedCount:      &count,
		OutputDir:          r.OutputDir,
	})
}
