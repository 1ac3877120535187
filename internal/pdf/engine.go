package pdf

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/a3tai/draw-parser/internal/draw"
	"github.com/a3tai/draw-parser/internal/draw/textparse"
	pdferrors "github.com/a3tai/draw-parser/internal/pdf/errors"
	"github.com/a3tai/draw-parser/internal/pdf/text"
	"github.com/a3tai/draw-parser/internal/pdf/xfa"
)

// Source names the path that produced a record
type Source string

const (
	SourceDataset Source = "dataset"
	SourceText    Source = "text"
)

// DatasetSource decodes the embedded XFA dataset of a PDF
type DatasetSource interface {
	ExtractFile(path string) (*xfa.Element, error)
}

// TranscriptSource produces a normalized plain text transcript of a PDF
type TranscriptSource interface {
	Acquire(path string, forceOCR bool) text.Result
}

// TextParser rebuilds a record from a transcript
type TextParser interface {
	Parse(text string) *draw.Record
}

// Result is one extracted record together with how it was obtained
type Result struct {
	Record  *draw.Record
	Source  Source
	Backend text.BackendType
}

// Options configures NewEngine
type Options struct {
	MaxFileSize int64
	// RootDir restricts input paths when set
	RootDir    string
	Text       text.Config
	Vocabulary *draw.Vocabulary
}

// Engine converts one DD2977 PDF into a record. It keeps no per-document
// state and may be shared between goroutines.
type Engine struct {
	validator   *Validator
	datasets    DatasetSource
	transcripts TranscriptSource
	parser      TextParser
}

// NewEngine wires the stock dataset extractor, text layer and parser
func NewEngine(opts Options) (*Engine, error) {
	layer, err := text.NewLayer(opts.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to create text layer: %w", err)
	}
	validator := NewValidator(opts.MaxFileSize).WithRoot(opts.RootDir)
	log.Debug().
		Interface("backends", layer.Backends()).
		Int64("max_file_size", validator.MaxFileSize()).
		Str("root", opts.RootDir).
		Msg("extraction engine ready")
	return NewEngineWith(validator, xfa.NewExtractor(), layer, textparse.NewParser(opts.Vocabulary)), nil
}

// NewEngineWith assembles an engine from explicit collaborators
func NewEngineWith(validator *Validator, datasets DatasetSource, transcripts TranscriptSource, parser TextParser) *Engine {
	return &Engine{
		validator:   validator,
		datasets:    datasets,
		transcripts: transcripts,
		parser:      parser,
	}
}

// Validator returns the input validator used by Extract
func (e *Engine) Validator() *Validator {
	return e.validator
}

// Extract validates path and builds its record. The embedded dataset is
// tried first; the text path runs only when it is absent or does not match
// the form. forceOCR limits the text path to OCR backends.
func (e *Engine) Extract(path string, forceOCR bool) (*Result, error) {
	if err := e.validator.ValidateFile(path); err != nil {
		return nil, err
	}

	if rec, ok := e.fromDataset(path); ok {
		return &Result{Record: rec, Source: SourceDataset}, nil
	}

	transcript := e.transcripts.Acquire(path, forceOCR)
	if text.IsUnrenderablePlaceholder(transcript.Text) {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeUnrenderableForm, pdferrors.UnrenderableFormMessage).WithFile(path)
	}
	if strings.TrimSpace(transcript.Text) == "" {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeNoText, "unable to extract text").WithFile(path)
	}

	log.Debug().Str("path", path).Str("backend", string(transcript.Backend)).Msg("parsing transcript")
	return &Result{
		Record:  e.parser.Parse(transcript.Text),
		Source:  SourceText,
		Backend: transcript.Backend,
	}, nil
}

// ParseText runs only the heuristic parser over an already extracted text
func (e *Engine) ParseText(raw string) *draw.Record {
	return e.parser.Parse(text.Normalize(raw))
}

func (e *Engine) fromDataset(path string) (*draw.Record, bool) {
	tree, err := e.datasets.ExtractFile(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("no usable XFA dataset")
		return nil, false
	}
	rec, ok := draw.FromDataset(tree)
	if !ok {
		log.Debug().Str("path", path).Int("top_level_tags", tree.Len()).Msg("XFA dataset does not match the DD2977 layout")
		return nil, false
	}
	log.Debug().Str("path", path).Int("subtasks", len(rec.Subtasks)).Msg("built record from XFA dataset")
	return rec, true
}
