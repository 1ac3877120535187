package text

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// NativeBackend reads the embedded text layer page by page
type NativeBackend struct{}

// NewNativeBackend creates a text-layer backend
func NewNativeBackend() *NativeBackend {
	return &NativeBackend{}
}

// Name returns the backend type
func (b *NativeBackend) Name() BackendType {
	return BackendNative
}

// Extract concatenates the plain text of every page
func (b *NativeBackend) Extract(path string) (string, error) {
	return withReader(BackendNative, path, func(r *pdf.Reader) (string, error) {
		var builder strings.Builder
		for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
			page := r.Page(pageNum)
			if page.V.IsNull() {
				continue
			}

			content, err := page.GetPlainText(nil)
			if err != nil {
				// Continue with other pages even if one fails
				log.Debug().Err(err).Int("page", pageNum).Msg("native text extraction failed for page")
				continue
			}
			builder.WriteString(content)
			builder.WriteString("\n")
		}
		return builder.String(), nil
	})
}

// withReader opens path with ledongthuc/pdf and runs fn, converting panics
// from malformed content streams into errors.
func withReader(backend BackendType, path string, fn func(*pdf.Reader) (string, error)) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &BackendError{Backend: backend, Op: "extract", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", &BackendError{Backend: backend, Op: "open", Err: fmt.Errorf("failed to open PDF: %w", err)}
	}
	defer f.Close()

	return fn(r)
}
