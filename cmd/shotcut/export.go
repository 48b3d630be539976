package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/five82/shotcut"
	"github.com/five82/shotcut/internal/config"
	"github.com/five82/shotcut/internal/export"
	"github.com/five82/shotcut/internal/reporter"
	"github.com/five82/shotcut/internal/tracing"
)

// Export file names written inside a run's output directory.
const (
	documentName = "shots.pdf"
	archiveName  = "shots.zip"
)

// runExporter writes and uploads exports after each extraction.
type runExporter struct {
	pdf      bool
	zip      bool
	upload   bool
	storage  config.StorageConfig
	reporter reporter.Reporter
	logger   zerolog.Logger
}

func (x *runExporter) export(ctx context.Context, run *shotcut.Run) error {
	ctx, span := tracing.Tracer().Start(ctx, "shotcut.export")
	defer span.End()

	if x.pdf {
		doc, err := shotcut.ExportDocument(ctx, run.Catalog.ImagePaths())
		if err != nil {
			return err
		}
		path := filepath.Join(run.OutputDir, documentName)
		if err := writeExport(path, doc); err != nil {
			return err
		}
		x.reporter.ExportComplete(reporter.ExportSummary{Kind: "pdf", Path: path, Size: uint64(len(doc)), Items: run.Catalog.Len()})
	}

	if !x.zip && !x.upload {
		return nil
	}

	archive, err := shotcut.ExportArchive(ctx, run.OutputDir)
	if err != nil {
		return err
	}
	if x.zip {
		path := filepath.Join(run.OutputDir, archiveName)
		if err := writeExport(path, archive); err != nil {
			return err
		}
		x.reporter.ExportComplete(reporter.ExportSummary{Kind: "zip", Path: path, Size: uint64(len(archive)), Items: run.Catalog.Len()})
	}
	if x.upload {
		key, err := publish(ctx, x.storage, run.ID, archive)
		if err != nil {
			return err
		}
		x.logger.Info().Str("key", key).Str("bucket", x.storage.Bucket).Msg("uploaded archive")
		x.reporter.ExportComplete(reporter.ExportSummary{Kind: "upload", Path: key, Size: uint64(len(archive)), Items: run.Catalog.Len()})
	}
	return nil
}

func publish(ctx context.Context, storage config.StorageConfig, runID string, archive []byte) (string, error) {
	pub, err := export.NewPublisher(storage)
	if err != nil {
		return "", err
	}
	return pub.Publish(ctx, runID, archive)
}

func writeExport(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a finished output directory",
	}

	pdf := &cobra.Command{
		Use:   "pdf <output-dir>",
		Short: "Render the catalog in shots.json as a PDF, one page per shot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportPDF(cmd, args[0])
		},
	}
	pdf.Flags().StringP("output", "o", documentName, "PDF file to write")

	zip := &cobra.Command{
		Use:   "zip <output-dir>",
		Short: "Bundle every image in a directory into a ZIP archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportZip(cmd, args[0])
		},
	}
	zip.Flags().StringP("output", "o", archiveName, "ZIP file to write")
	zip.Flags().Bool("upload", false, "Upload the archive to the configured S3 bucket")

	cmd.AddCommand(pdf, zip)
	return cmd
}

func exportReporter(cmd *cobra.Command) reporter.Reporter {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return reporter.NewJSONReporter()
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	return reporter.NewTerminalReporter(verbose)
}

func runExportPDF(cmd *cobra.Command, dir string) error {
	out, _ := cmd.Flags().GetString("output")
	rep := exportReporter(cmd)

	catalog, err := shotcut.LoadCatalog(dir)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	doc, err := shotcut.ExportDocument(ctx, catalog.ImagePaths())
	if err != nil {
		return err
	}
	if err := writeExport(out, doc); err != nil {
		return err
	}

	rep.ExportComplete(reporter.ExportSummary{Kind: "pdf", Path: out, Size: uint64(len(doc)), Items: catalog.Len()})
	return nil
}

func runExportZip(cmd *cobra.Command, dir string) error {
	out, _ := cmd.Flags().GetString("output")
	upload, _ := cmd.Flags().GetBool("upload")
	configPath, _ := cmd.Flags().GetString("config")
	rep := exportReporter(cmd)

	ctx, cancel := signalContext()
	defer cancel()

	archive, err := shotcut.ExportArchive(ctx, dir)
	if err != nil {
		return err
	}
	if err := writeExport(out, archive); err != nil {
		return err
	}
	rep.ExportComplete(reporter.ExportSummary{Kind: "zip", Path: out, Size: uint64(len(archive))})

	if !upload {
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Reuse the run id from the manifest when there is one.
	runID := uuid.NewString()
	if manifest, _, err := shotcut.LoadManifest(dir); err == nil && manifest.RunID != "" {
		runID = manifest.RunID
	}

	key, err := publish(ctx, cfg.Storage, runID, archive)
	if err != nil {
		return err
	}
	rep.ExportComplete(reporter.ExportSummary{Kind: "upload", Path: key, Size: uint64(len(archive))})
	return nil
}
