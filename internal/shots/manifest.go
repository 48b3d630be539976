package shots

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/five82/shotcut/internal/config"
	serrors "github.com/five82/shotcut/internal/errors"
)

// Manifest is the shots.json written beside the images. Image paths are
// stored relative to the output directory.
type Manifest struct {
	RunID       string    `json:"run_id"`
	Video       string    `json:"video"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	FrameRate   string    `json:"frame_rate"`
	Strategy    string    `json:"strategy"`
	Sensitivity float64   `json:"sensitivity"`
	Skipped     int       `json:"skipped"`
	CreatedAt   time.Time `json:"created_at"`
	Shots       []Record  `json:"shots"`
}

// WriteManifest writes m with the catalog's records into dir.
func WriteManifest(dir string, m Manifest, catalog *Catalog) error {
	m.Shots = catalog.Records()
	if m.Shots == nil {
		m.Shots = []Record{}
	}
	for i := range m.Shots {
		m.Shots[i].ImagePath = filepath.Base(m.Shots[i].ImagePath)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return serrors.NewOutputWriteError("manifest", dir, err)
	}

	path := filepath.Join(dir, config.DefaultManifestName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return serrors.NewOutputWriteError("manifest", path, err)
	}
	return nil
}

// LoadManifest reads dir's manifest and rebuilds its catalog with image
// paths joined back onto dir.
func LoadManifest(dir string) (*Manifest, *Catalog, error) {
	path := filepath.Join(dir, config.DefaultManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, serrors.NewEmptyCatalogError(fmt.Sprintf("no %s in %s", config.DefaultManifestName, dir))
		}
		return nil, nil, serrors.NewIOError("failed to read manifest", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, nil, serrors.NewIOError(fmt.Sprintf("invalid manifest %s", path), err)
	}

	records := make([]Record, len(m.Shots))
	for i, r := range m.Shots {
		r.ImagePath = filepath.Join(dir, r.ImagePath)
		records[i] = r
	}
	return &m, NewCatalog(records), nil
}
