package text

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// OCRBackend rasterizes each page with MuPDF and recognizes it with the
// tesseract command line tool.
type OCRBackend struct {
	dpi       float64
	tesseract string
	lang      string
}

// NewOCRBackend creates an OCR backend from cfg, filling unset fields with
// the defaults.
func NewOCRBackend(cfg Config) *OCRBackend {
	def := DefaultConfig()
	b := &OCRBackend{dpi: cfg.OCRDPI, tesseract: cfg.Tesseract, lang: cfg.OCRLang}
	if b.dpi <= 0 {
		b.dpi = def.OCRDPI
	}
	if b.tesseract == "" {
		b.tesseract = def.Tesseract
	}
	if b.lang == "" {
		b.lang = def.OCRLang
	}
	return b
}

// Name returns the backend type
func (b *OCRBackend) Name() BackendType {
	return BackendOCR
}

// Available reports whether the tesseract binary can be found
func (b *OCRBackend) Available() bool {
	_, err := exec.LookPath(b.tesseract)
	return err == nil
}

// Extract renders and recognizes every page. A missing tesseract binary
// yields no text rather than an error.
func (b *OCRBackend) Extract(path string) (text string, err error) {
	bin, err := exec.LookPath(b.tesseract)
	if err != nil {
		log.Debug().Str("tesseract", b.tesseract).Msg("OCR unavailable, tesseract not found")
		return "", nil
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &BackendError{Backend: BackendOCR, Op: "render", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	doc, err := fitz.New(path)
	if err != nil {
		return "", &BackendError{Backend: BackendOCR, Op: "open", Err: fmt.Errorf("failed to open PDF: %w", err)}
	}
	defer doc.Close()

	dir, err := os.MkdirTemp("", "draw-ocr-")
	if err != nil {
		return "", &BackendError{Backend: BackendOCR, Op: "tempdir", Err: err}
	}
	defer os.RemoveAll(dir)

	var builder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := b.recognizePage(doc, bin, dir, i)
		if err != nil {
			log.Debug().Err(err).Int("page", i+1).Msg("OCR failed for page")
			continue
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func (b *OCRBackend) recognizePage(doc *fitz.Document, bin, dir string, index int) (string, error) {
	img, err := doc.ImageDPI(index, b.dpi)
	if err != nil {
		return "", &BackendError{Backend: BackendOCR, Op: "render", Err: err}
	}

	imgPath := filepath.Join(dir, fmt.Sprintf("page-%04d.png", index+1))
	f, err := os.Create(imgPath)
	if err != nil {
		return "", &BackendError{Backend: BackendOCR, Op: "write_image", Err: err}
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", &BackendError{Backend: BackendOCR, Op: "write_image", Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &BackendError{Backend: BackendOCR, Op: "write_image", Err: err}
	}

	var stderr bytes.Buffer
	cmd := exec.Command(bin, imgPath, "stdout", "-l", b.lang)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", &BackendError{
			Backend: BackendOCR,
			Op:      "recognize",
			Err:     fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String())),
		}
	}
	return string(out), nil
}
