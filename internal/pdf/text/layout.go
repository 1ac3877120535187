package text

import (
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// LayoutBackend rebuilds lines from positioned text runs, which recovers
// row order on pages where the plain text stream is out of reading order.
type LayoutBackend struct{}

// NewLayoutBackend creates a layout-analysis backend
func NewLayoutBackend() *LayoutBackend {
	return &LayoutBackend{}
}

// Name returns the backend type
func (b *LayoutBackend) Name() BackendType {
	return BackendLayout
}

// Extract emits one line per text row, runs joined by a space
func (b *LayoutBackend) Extract(path string) (string, error) {
	return withReader(BackendLayout, path, func(r *pdf.Reader) (string, error) {
		var builder strings.Builder
		for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
			page := r.Page(pageNum)
			if page.V.IsNull() {
				continue
			}

			rows, err := page.GetTextByRow()
			if err != nil {
				log.Debug().Err(err).Int("page", pageNum).Msg("layout extraction failed for page")
				continue
			}
			for _, row := range rows {
				builder.WriteString(rowText(row))
				builder.WriteString("\n")
			}
		}
		return builder.String(), nil
	})
}

func rowText(row *pdf.Row) string {
	parts := make([]string, 0, len(row.Content))
	for _, run := range row.Content {
		if s := strings.TrimSpace(run.S); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
