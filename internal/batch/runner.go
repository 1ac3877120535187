// Package batch drives the extraction engine over many PDFs, writing one
// JSON document per form and logging past individual failures.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/a3tai/draw-parser/internal/draw"
	"github.com/a3tai/draw-parser/internal/output"
	"github.com/a3tai/draw-parser/internal/pdf"
	pdferrors "github.com/a3tai/draw-parser/internal/pdf/errors"
)

// Extractor converts one PDF into a record
type Extractor interface {
	Extract(path string, forceOCR bool) (*pdf.Result, error)
}

// Options configures a Runner
type Options struct {
	OutDir   string
	ForceOCR bool
	// Workers bounds concurrent documents in recursive mode; values below 1
	// mean one at a time.
	Workers int
}

// Runner processes documents with a shared extractor
type Runner struct {
	extractor Extractor
	opts      Options
}

// NewRunner creates a batch runner
func NewRunner(extractor Extractor, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{extractor: extractor, opts: opts}
}

// ProcessFile extracts one PDF and writes it to
// {outdir}/{yyyymmdd}-{slug}.json, returning the written path.
func (r *Runner) ProcessFile(path string) (string, error) {
	res, err := r.extractor.Extract(path, r.opts.ForceOCR)
	if err != nil {
		return "", err
	}

	outPath, err := output.Path(r.opts.OutDir, path, res.Record.Date)
	if err != nil {
		return "", err
	}
	if err := output.WriteJSON(outPath, res.Record); err != nil {
		return "", err
	}

	log.Info().Str("path", path).Str("output", outPath).Str("source", string(res.Source)).Msg("Wrote record")
	return outPath, nil
}

// Summary counts the outcome of a recursive run
type Summary struct {
	Found     int
	Succeeded int
	Skipped   []SkippedDocument
}

// RunRecursive processes every PDF below root. Failures are logged and
// recorded but never stop the run.
func (r *Runner) RunRecursive(ctx context.Context, root string) (*Summary, error) {
	files, err := FindPDFs(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no PDF files found in: %s", root)
	}
	log.Info().Int("count", len(files)).Str("root", root).Msg("Found PDF files to process")

	skipped := make([]*SkippedDocument, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			if _, err := r.ProcessFile(path); err != nil {
				log.Warn().Str("path", path).Str("reason", pdferrors.Reason(err)).Msg("Skipping DRAW")
				skipped[i] = &SkippedDocument{Type: DocumentTypeDRAW, Path: absPath(path), Reason: pdferrors.Reason(err)}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{Found: len(files)}
	for _, s := range skipped {
		if s != nil {
			summary.Skipped = append(summary.Skipped, *s)
		}
	}
	summary.Succeeded = summary.Found - len(summary.Skipped)
	log.Info().Msgf("Successfully processed %d/%d files", summary.Succeeded, summary.Found)
	return summary, nil
}

// RunDirectories visits the sorted subdirectories of each base directory and
// parses the first PDF found in each. Every subdirectory gets the next
// source directory id, whether or not it holds a PDF.
func (r *Runner) RunDirectories(ctx context.Context, baseDirs []string) (*Report, error) {
	var skipped []SkippedDocument
	dirID := 1

	for _, base := range baseDirs {
		if info, err := os.Stat(base); err != nil || !info.IsDir() {
			log.Warn().Str("base", base).Msg("Base directory not found")
			continue
		}

		dirs, err := subdirectories(base)
		if err != nil {
			log.Warn().Err(err).Str("base", base).Msg("Cannot list base directory")
			continue
		}
		if len(dirs) == 0 {
			log.Warn().Str("base", base).Msg("No subdirectories found")
			continue
		}

		for _, dir := range dirs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			log.Info().Str("directory", dir).Int("id", dirID).Msg("Processing directory")
			if s := r.processDirectory(dir, dirID); s != nil {
				skipped = append(skipped, *s)
			}
			dirID++
		}
	}

	if dirID == 1 {
		return nil, fmt.Errorf("no valid base directories processed")
	}
	return NewReport(dirID-1, skipped), nil
}

func (r *Runner) processDirectory(dir string, dirID int) *SkippedDocument {
	pdfPath, err := firstPDF(dir)
	if err != nil {
		log.Warn().Err(err).Str("directory", dir).Msg("Cannot list directory")
		return nil
	}
	if pdfPath == "" {
		log.Info().Str("directory", dir).Msg("No DRAW PDF found")
		return nil
	}

	prov := &draw.Provenance{
		SourcePDF:           absPath(pdfPath),
		SourceDirectoryID:   dirID,
		SourceDirectoryName: filepath.Base(dir),
		SourceBaseDirectory: filepath.Base(filepath.Dir(dir)),
	}

	res, err := r.extractor.Extract(pdfPath, r.opts.ForceOCR)
	if err == nil {
		res.Record.Provenance = prov
		outPath := filepath.Join(r.opts.OutDir, output.BatchName(dirID, pdfPath))
		if err = output.WriteJSON(outPath, res.Record); err == nil {
			log.Info().Str("output", outPath).Msg("Wrote DRAW")
			return nil
		}
	}

	reason := pdferrors.Reason(err)
	log.Warn().Str("path", pdfPath).Str("reason", reason).Msg("Skipping DRAW")
	return &SkippedDocument{
		Type:       DocumentTypeDRAW,
		Path:       prov.SourcePDF,
		Reason:     reason,
		Provenance: *prov,
	}
}

// FindPDFs returns every regular *.pdf below root in lexical walk order
func FindPDFs(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("directory does not exist: %s", root)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Continue walking even if we encounter an error with a specific file
			return nil //nolint:nilerr // Intentionally continue on file errors
		}
		if d.Type().IsRegular() && pdf.IsPDFName(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}
	return files, nil
}

func subdirectories(base string) ([]string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(base, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// firstPDF returns the lexically first PDF directly inside dir, or ""
func firstPDF(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	// ReadDir sorts by file name
	for _, e := range entries {
		if e.Type().IsRegular() && pdf.IsPDFName(e.Name()) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
