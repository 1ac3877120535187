package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_DefaultConfig(t *testing.T) {
	cfg, err := Load("draw-parser", []string{"form.pdf"})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.OutDir != "PARSED_DRAWS" {
		t.Errorf("Load() OutDir = %v, want PARSED_DRAWS", cfg.OutDir)
	}
	if cfg.Batch || cfg.ForceOCR {
		t.Errorf("Load() Batch = %v, ForceOCR = %v, want both false", cfg.Batch, cfg.ForceOCR)
	}
	if cfg.Mode != ModeRecursive {
		t.Errorf("Load() Mode = %v, want %v", cfg.Mode, ModeRecursive)
	}
	if strings.Join(cfg.Backends, ",") != "native,layout,ocr" {
		t.Errorf("Load() Backends = %v", cfg.Backends)
	}
	if len(cfg.Inputs) != 1 || cfg.Inputs[0] != "form.pdf" {
		t.Errorf("Load() Inputs = %v, want [form.pdf]", cfg.Inputs)
	}
}

func TestLoad_ValidFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "batch directories",
			args: []string{"--batch", "--mode=directories", "--outdir=/tmp/out", "base1", "base2"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Batch || !cfg.IsDirectoriesMode() || cfg.OutDir != "/tmp/out" {
					t.Errorf("Load() = %v", cfg)
				}
				if len(cfg.Inputs) != 2 {
					t.Errorf("Load() Inputs = %v, want two base directories", cfg.Inputs)
				}
			},
		},
		{
			name: "ocr settings",
			args: []string{"--force-ocr", "--ocr-dpi=200", "--ocr-lang=fra", "--tesseract=/opt/tess", "x.pdf"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.ForceOCR || cfg.OCRDPI != 200 || cfg.OCRLang != "fra" || cfg.Tesseract != "/opt/tess" {
					t.Errorf("Load() = %+v", cfg)
				}
			},
		},
		{
			name: "backend order",
			args: []string{"--backends=layout,native", "x.pdf"},
			check: func(t *testing.T, cfg *Config) {
				if strings.Join(cfg.Backends, ",") != "layout,native" {
					t.Errorf("Load() Backends = %v", cfg.Backends)
				}
			},
		},
		{
			name: "upper case values",
			args: []string{"--loglevel=DEBUG", "--mode=Directories"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.IsDebug() || !cfg.IsDirectoriesMode() {
					t.Errorf("Load() LogLevel = %v, Mode = %v", cfg.LogLevel, cfg.Mode)
				}
			},
		},
		{
			name: "workers and size",
			args: []string{"--workers=4", "--maxfilesize=2048"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Workers != 4 || cfg.MaxFileSize != 2048 {
					t.Errorf("Load() Workers = %v, MaxFileSize = %v", cfg.Workers, cfg.MaxFileSize)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("draw-parser", tt.args)
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("DRAW_OUTDIR", "/env/out")
	t.Setenv("DRAW_FORCE_OCR", "true")
	t.Setenv("DRAW_BACKENDS", "ocr,native")
	t.Setenv("DRAW_SKIP_REPORT", "report.json")
	t.Setenv("DRAW_LOGLEVEL", "warn")

	cfg, err := Load("draw-parser", nil)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.OutDir != "/env/out" {
		t.Errorf("Load() OutDir = %v, want /env/out", cfg.OutDir)
	}
	if !cfg.ForceOCR {
		t.Error("Load() ForceOCR should come from DRAW_FORCE_OCR")
	}
	if cfg.SkipReport != "report.json" {
		t.Errorf("Load() SkipReport = %v, want report.json", cfg.SkipReport)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Load() LogLevel = %v, want warn", cfg.LogLevel)
	}
	order, err := cfg.BackendOrder()
	if err != nil || len(order) != 2 || order[0] != "ocr" {
		t.Errorf("Load() BackendOrder = %v, %v", order, err)
	}
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	t.Setenv("DRAW_OUTDIR", "/env/out")

	cfg, err := Load("draw-parser", []string{"--outdir=/flag/out"})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.OutDir != "/flag/out" {
		t.Errorf("Load() OutDir = %v, want /flag/out (flag should override env)", cfg.OutDir)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draw.yaml")
	content := "outdir: /file/out\nmode: directories\nbackends:\n  - layout\n  - ocr\nocr-dpi: 150\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Run("file values", func(t *testing.T) {
		cfg, err := Load("draw-parser", []string{"--config", path})
		if err != nil {
			t.Fatalf("Load() unexpected error: %v", err)
		}
		if cfg.OutDir != "/file/out" || !cfg.IsDirectoriesMode() || cfg.OCRDPI != 150 {
			t.Errorf("Load() = %v, dpi %v", cfg, cfg.OCRDPI)
		}
		if strings.Join(cfg.Backends, ",") != "layout,ocr" {
			t.Errorf("Load() Backends = %v", cfg.Backends)
		}
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv("DRAW_OUTDIR", "/env/out")
		cfg, err := Load("draw-parser", []string{"--config", path})
		if err != nil {
			t.Fatalf("Load() unexpected error: %v", err)
		}
		if cfg.OutDir != "/env/out" {
			t.Errorf("Load() OutDir = %v, want /env/out", cfg.OutDir)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("draw-parser", []string{"--config", filepath.Join(dir, "missing.yaml")})
		if err == nil || !strings.Contains(err.Error(), "cannot read config file") {
			t.Errorf("Load() error = %v, want config file error", err)
		}
	})
}

func TestLoad_PDFDirectoryIsAbsolute(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.Mkdir("pdfs", 0o750); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	cfg, err := Load("draw-mcp", []string{"--dir=pdfs"})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !filepath.IsAbs(cfg.PDFDirectory) || filepath.Base(cfg.PDFDirectory) != "pdfs" {
		t.Errorf("Load() PDFDirectory = %v, want absolute path to pdfs", cfg.PDFDirectory)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "invalid mode", args: []string{"--mode=flat"}, wantErr: "mode must be either"},
		{name: "invalid log level", args: []string{"--loglevel=loud"}, wantErr: "invalid log level"},
		{name: "invalid backend", args: []string{"--backends=native,magic"}, wantErr: "unknown text backend"},
		{name: "duplicate backend", args: []string{"--backends=ocr,ocr"}, wantErr: "listed twice"},
		{name: "unknown flag", args: []string{"--bogus"}, wantErr: "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("draw-parser", tt.args)
			if err == nil {
				t.Fatalf("Load() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_VersionFlag(t *testing.T) {
	for _, arg := range []string{"--version", "-version", "-v"} {
		t.Run(arg, func(t *testing.T) {
			_, err := Load("draw-parser", []string{arg})
			if !errors.Is(err, ErrVersionRequested) {
				t.Errorf("Load() error = %v, want ErrVersionRequested", err)
			}
		})
	}
}
