// Package text produces a plain text transcript of a PDF through an ordered
// chain of extraction backends.
package text

import (
	"fmt"
	"strings"
)

// Backend extracts a raw transcript from a PDF file. An empty string with a
// nil error means the backend ran and found nothing.
type Backend interface {
	Name() BackendType
	Extract(path string) (string, error)
}

// BackendType names a transcript backend
type BackendType string

const (
	BackendNative BackendType = "native"
	BackendLayout BackendType = "layout"
	BackendOCR    BackendType = "ocr"
)

// DefaultOrder is the chain used when none is configured
var DefaultOrder = []BackendType{BackendNative, BackendLayout, BackendOCR}

// Config holds the tunables of the backends
type Config struct {
	Order     []BackendType
	OCRDPI    float64
	Tesseract string
	OCRLang   string
}

// DefaultConfig returns the stock backend settings
func DefaultConfig() Config {
	return Config{
		Order:     append([]BackendType(nil), DefaultOrder...),
		OCRDPI:    300,
		Tesseract: "tesseract",
		OCRLang:   "eng",
	}
}

// BackendError records which backend failed and in which step
type BackendError struct {
	Backend BackendType `json:"backend"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend error in %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ParseOrder converts backend names such as "native,layout,ocr" into a chain.
// Unknown or repeated names are rejected.
func ParseOrder(names []string) ([]BackendType, error) {
	var order []BackendType
	seen := make(map[BackendType]bool)
	for _, raw := range names {
		for _, part := range strings.Split(raw, ",") {
			name := BackendType(strings.ToLower(strings.TrimSpace(part)))
			if name == "" {
				continue
			}
			switch name {
			case BackendNative, BackendLayout, BackendOCR:
			default:
				return nil, fmt.Errorf("unknown text backend: %s", name)
			}
			if seen[name] {
				return nil, fmt.Errorf("text backend listed twice: %s", name)
			}
			seen[name] = true
			order = append(order, name)
		}
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("no text backends configured")
	}
	return order, nil
}

// NewBackend creates the backend named by t
func NewBackend(t BackendType, cfg Config) (Backend, error) {
	switch t {
	case BackendNative:
		return NewNativeBackend(), nil
	case BackendLayout:
		return NewLayoutBackend(), nil
	case BackendOCR:
		return NewOCRBackend(cfg), nil
	default:
		return nil, &BackendError{Backend: t, Op: "create", Err: fmt.Errorf("unknown backend type: %s", t)}
	}
}
