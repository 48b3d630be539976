package validation

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/five82/shotcut/internal/shots"
	"github.com/five82/shotcut/internal/util"
)

// Options contains optional expectations for validation.
type Options struct {
	ExpectedDimensions *[2]int
	ExpectedCount      *int

	// OutputDir, when set, must hold exactly one image per record.
	OutputDir string
}

// VerifyCatalog checks catalog with the DefaultInspector.
func VerifyCatalog(catalog *shots.Catalog, opts Options) *Result {
	return VerifyWithInspector(NewDefaultInspector(), catalog, opts)
}

// VerifyWithInspector checks that every record's image decodes at the
// expected size, ids run 1..n with matching file names, and timecodes
// increase.
func VerifyWithInspector(inspector ImageInspector, catalog *shots.Catalog, opts Options) *Result {
	records := catalog.Records()
	result := &Result{}

	result.IsReadable, result.IsDimensionsMatch, result.ReadableMessage, result.DimensionsMessage =
		checkImages(inspector, records, opts.ExpectedDimensions)
	result.IsSequential, result.SequenceMessage = checkSequence(records)
	result.IsChronological, result.ChronologicalMessage = checkChronology(records)
	result.IsCountCorrect, result.CountMessage = checkCount(len(records), opts.ExpectedCount)
	if result.IsCountCorrect && opts.OutputDir != "" {
		result.IsCountCorrect, result.CountMessage = checkDirectory(opts.OutputDir, len(records))
	}

	return result
}

func checkImages(inspector ImageInspector, records []shots.Record, expected *[2]int) (bool, bool, string, string) {
	readable, sized := true, true
	readMsg := fmt.Sprintf("%d decodable", len(records))
	sizeMsg := "Not checked"
	if expected != nil {
		sizeMsg = fmt.Sprintf("All %dx%d", expected[0], expected[1])
	}

	for _, r := range records {
		w, h, err := inspector.Dimensions(r.ImagePath)
		if err != nil {
			if readable {
				readMsg = fmt.Sprintf("%s: %v", filepath.Base(r.ImagePath), err)
			}
			readable = false
			continue
		}
		if expected != nil && (w != expected[0] || h != expected[1]) && sized {
			sized = false
			sizeMsg = fmt.Sprintf("%s is %dx%d, expected %dx%d", filepath.Base(r.ImagePath), w, h, expected[0], expected[1])
		}
	}
	return readable, sized, readMsg, sizeMsg
}

func checkSequence(records []shots.Record) (bool, string) {
	for i, r := range records {
		if r.ID != i+1 {
			return false, fmt.Sprintf("Expected id %d at position %d, got %d", i+1, i+1, r.ID)
		}
		base := filepath.Base(r.ImagePath)
		ext := filepath.Ext(base)
		if want := fmt.Sprintf("shot_%03d%s", r.ID, ext); base != want {
			return false, fmt.Sprintf("Shot %d saved as %s, expected %s", r.ID, base, want)
		}
	}
	return true, fmt.Sprintf("Ids 1-%d", len(records))
}

func checkChronology(records []shots.Record) (bool, string) {
	prev := -1
	for _, r := range records {
		tc, ok := util.ParseTimecode(r.Timecode)
		if !ok {
			return false, fmt.Sprintf("Shot %d has malformed timecode %q", r.ID, r.Timecode)
		}
		if int(tc.Milliseconds()) <= prev {
			return false, fmt.Sprintf("Shot %d at %s does not follow the previous shot", r.ID, r.Timecode)
		}
		prev = int(tc.Milliseconds())
	}
	return true, "Strictly increasing"
}

func checkCount(actual int, expected *int) (bool, string) {
	if expected == nil {
		return true, fmt.Sprintf("%d shots", actual)
	}
	if actual == *expected {
		return true, fmt.Sprintf("%d shots as expected", actual)
	}
	return false, fmt.Sprintf("Got %d shots, expected %d", actual, *expected)
}

func checkDirectory(dir string, records int) (bool, string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Sprintf("Cannot read %s: %v", dir, err)
	}
	images := 0
	for _, entry := range entries {
		if !entry.IsDir() && util.HasImageExtension(entry.Name()) {
			images++
		}
	}
	if images != records {
		return false, fmt.Sprintf("%d images on disk for %d shots", images, records)
	}
	return true, fmt.Sprintf("%d shots, %d images on disk", records, images)
}
