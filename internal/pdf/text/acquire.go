package text

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Result is the transcript chosen by a Layer
type Result struct {
	Text    string
	Backend BackendType
}

// Layer runs backends in order and keeps the first usable transcript
type Layer struct {
	backends []Backend
}

// NewLayer builds the configured backend chain
func NewLayer(cfg Config) (*Layer, error) {
	order := cfg.Order
	if len(order) == 0 {
		order = DefaultOrder
	}
	backends := make([]Backend, 0, len(order))
	for _, t := range order {
		b, err := NewBackend(t, cfg)
		if err != nil {
			return nil, err
		}
		if ocr, ok := b.(*OCRBackend); ok && !ocr.Available() {
			log.Debug().Str("tesseract", ocr.tesseract).Msg("tesseract not found, OCR backend will yield no text")
		}
		backends = append(backends, b)
	}
	return NewLayerWithBackends(backends...), nil
}

// NewLayerWithBackends builds a layer over an explicit chain
func NewLayerWithBackends(backends ...Backend) *Layer {
	return &Layer{backends: backends}
}

// Backends returns the chain in evaluation order
func (l *Layer) Backends() []BackendType {
	names := make([]BackendType, len(l.backends))
	for i, b := range l.backends {
		names[i] = b.Name()
	}
	return names
}

// Acquire returns the normalized transcript of the first backend producing
// non-blank text. Backend failures are logged and skipped. With forceOCR only
// the OCR backends run. An empty Result means nothing produced text.
func (l *Layer) Acquire(path string, forceOCR bool) Result {
	for _, b := range l.backends {
		if forceOCR && b.Name() != BackendOCR {
			continue
		}

		raw, err := safeExtract(b, path)
		if err != nil {
			log.Debug().Err(err).Str("backend", string(b.Name())).Str("path", path).Msg("text backend failed")
			continue
		}

		text := Normalize(raw)
		if strings.TrimSpace(text) == "" {
			log.Debug().Str("backend", string(b.Name())).Str("path", path).Msg("text backend produced no text")
			continue
		}

		log.Debug().Str("backend", string(b.Name())).Int("chars", len(text)).Msg("acquired transcript")
		return Result{Text: text, Backend: b.Name()}
	}
	return Result{}
}

func safeExtract(b Backend, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &BackendError{Backend: b.Name(), Op: "extract", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return b.Extract(path)
}
