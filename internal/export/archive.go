package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	serrors "github.com/five82/shotcut/internal/errors"
	"github.com/five82/shotcut/internal/util"
)

// Archive zips every image under dir. Entries are flattened to their base
// names in walk order; when two files share a name the first one wins.
func Archive(ctx context.Context, dir string) ([]byte, error) {
	var files []string
	seen := make(map[string]bool)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return serrors.NewCancelledError(ctxErr)
		}
		if d.IsDir() || !util.HasImageExtension(d.Name()) {
			return nil
		}
		if seen[d.Name()] {
			return nil
		}
		seen[d.Name()] = true
		files = append(files, path)
		return nil
	})
	if err != nil {
		if serrors.IsCancelled(err) {
			return nil, err
		}
		return nil, serrors.NewIOError(fmt.Sprintf("cannot walk %s", dir), err)
	}

	if len(files) == 0 {
		return nil, serrors.NewEmptyCatalogError(fmt.Sprintf("no images in %s", dir))
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, path := range files {
		if err := addFileToZip(zw, path); err != nil {
			return nil, serrors.NewIOError(fmt.Sprintf("add %s to archive", path), err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, serrors.NewIOError("failed to finish archive", err)
	}
	return buf.Bytes(), nil
}

func addFileToZip(zw *zip.Writer, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(filename)
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(writer, file)
	return err
}
