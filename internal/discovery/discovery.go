// Package discovery finds video files for batch extraction.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	serrors "github.com/five82/shotcut/internal/errors"
	"github.com/five82/shotcut/internal/util"
)

// Result lists discovered videos with what was passed over.
type Result struct {
	Files        []string
	SkippedCount int
}

// FindVideoFiles returns the video files directly inside inputDir, sorted
// case-insensitively by name. Hidden files and subdirectories are ignored.
func FindVideoFiles(inputDir string, logger zerolog.Logger) (*Result, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, serrors.NewIOError(fmt.Sprintf("directory does not exist: %s", inputDir), err)
	}
	if !info.IsDir() {
		return nil, serrors.NewIOError(fmt.Sprintf("%s is not a directory", inputDir), nil)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, serrors.NewIOError(fmt.Sprintf("cannot read directory %s", inputDir), err)
	}

	result := &Result{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		fullPath := filepath.Join(inputDir, entry.Name())
		if util.IsVideoFile(fullPath) {
			result.Files = append(result.Files, fullPath)
		} else {
			result.SkippedCount++
		}
	}

	if len(result.Files) == 0 {
		return nil, serrors.NewNoFilesFoundError(inputDir)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(result.Files[i])) < strings.ToLower(filepath.Base(result.Files[j]))
	})

	logDiscoveredFiles(result, logger)
	return result, nil
}

// OutputDirsFor returns the per-video output directories used in batch mode,
// one per entry of videos. Each directory is named after the file stem;
// videos sharing a stem get the extension appended (holiday_mkv) and any
// remaining clash a numeric suffix, so no two videos share a directory.
func OutputDirsFor(baseDir string, videos []string) []string {
	stems := make(map[string]int, len(videos))
	for _, v := range videos {
		stems[strings.ToLower(util.GetFileStem(v))]++
	}

	used := make(map[string]bool, len(videos))
	dirs := make([]string, len(videos))
	for i, v := range videos {
		name := util.GetFileStem(v)
		if stems[strings.ToLower(name)] > 1 {
			if ext := strings.TrimPrefix(filepath.Ext(v), "."); ext != "" {
				name += "_" + strings.ToLower(ext)
			}
		}
		unique := name
		for n := 2; used[strings.ToLower(unique)]; n++ {
			unique = fmt.Sprintf("%s_%d", name, n)
		}
		used[strings.ToLower(unique)] = true
		dirs[i] = filepath.Join(baseDir, unique)
	}
	return dirs
}

// logDiscoveredFiles logs a count and the first five names.
func logDiscoveredFiles(result *Result, logger zerolog.Logger) {
	logger.Info().Int("files", len(result.Files)).Int("skipped", result.SkippedCount).Msg("found video files")

	maxToLog := min(5, len(result.Files))
	for i := 0; i < maxToLog; i++ {
		logger.Debug().Str("file", filepath.Base(result.Files[i])).Msg("discovered")
	}
	if len(result.Files) > 5 {
		logger.Debug().Int("more", len(result.Files)-5).Msg("additional files not listed")
	}
}
