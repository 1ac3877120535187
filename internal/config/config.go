package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/draw-parser/internal/draw"
	"github.com/a3tai/draw-parser/internal/pdf"
	"github.com/a3tai/draw-parser/internal/pdf/text"
)

const (
	// Batch mode constants
	ModeRecursive   = "recursive"
	ModeDirectories = "directories"

	// Default values
	DefaultOutDir      = "PARSED_DRAWS"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultOCRDPI      = 300
	DefaultTesseract   = "tesseract"
	DefaultOCRLang     = "eng"
	DefaultSkipReport  = "skipped_documents_report.json"
	DefaultWorkers     = 1

	// EnvPrefix is prepended to every environment variable, e.g. DRAW_OUTDIR
	EnvPrefix = "DRAW"
)

// ErrVersionRequested is returned by Load when --version is on the command line
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the DRAW parser and its MCP server
type Config struct {
	// Inputs are the positional arguments: one PDF, one batch root, or the
	// base directories of a directories batch.
	Inputs []string

	// Output configuration
	OutDir     string `validate:"required"`
	SkipReport string `validate:"required"`

	// Batch configuration
	Batch   bool
	Mode    string `validate:"oneof=recursive directories"`
	Workers int    `validate:"min=1,max=64"`

	// Extraction configuration
	ForceOCR    bool
	MaxFileSize int64   `validate:"gt=0"`
	OCRDPI      float64 `validate:"gte=72,lte=1200"`
	Tesseract   string  `validate:"required"`
	OCRLang     string  `validate:"required"`
	Backends    []string
	Vocabulary  string

	// PDFDirectory restricts MCP tool paths when set
	PDFDirectory string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string `validate:"oneof=debug info warn error"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutDir:      DefaultOutDir,
		SkipReport:  DefaultSkipReport,
		Mode:        ModeRecursive,
		Workers:     DefaultWorkers,
		MaxFileSize: DefaultMaxFileSize,
		OCRDPI:      DefaultOCRDPI,
		Tesseract:   DefaultTesseract,
		OCRLang:     DefaultOCRLang,
		Backends:    backendNames(text.DefaultOrder),
		Version:     "1.0.0",
		ServerName:  "draw-parser",
		LogLevel:    DefaultLogLevel,
	}
}

// LoadFromFlags parses the process command line and environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[0], os.Args[1:])
}

// Load builds a configuration from args, DRAW_* environment variables and
// an optional --config YAML file. Flags win over the environment, which wins
// over the file.
func Load(program string, args []string) (*Config, error) {
	cfg := DefaultConfig()

	if err := checkVersionFlag(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setupViperEnvironment(v, cfg)
	flags := defineCommandLineFlags(program, cfg)
	bindFlagsToViper(v, flags)
	setupUsageMessage(flags)

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
		}
	}

	populateConfigFromViper(v, cfg)
	cfg.Inputs = flags.Args()

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("outdir", cfg.OutDir)
	v.SetDefault("skip-report", cfg.SkipReport)
	v.SetDefault("batch", cfg.Batch)
	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("force-ocr", cfg.ForceOCR)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("ocr-dpi", cfg.OCRDPI)
	v.SetDefault("tesseract", cfg.Tesseract)
	v.SetDefault("ocr-lang", cfg.OCRLang)
	v.SetDefault("backends", cfg.Backends)
	v.SetDefault("vocabulary", cfg.Vocabulary)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(program string, cfg *Config) *pflag.FlagSet {
	flags := pflag.NewFlagSet(program, pflag.ContinueOnError)
	flags.String("config", "", "Optional YAML configuration file")
	flags.String("outdir", cfg.OutDir, "Directory that receives the JSON records")
	flags.String("skip-report", cfg.SkipReport, "Path of the skipped documents report (directories mode)")
	flags.Bool("batch", cfg.Batch, "Treat the inputs as directories and process them in batch")
	flags.String("mode", cfg.Mode, "Batch mode: 'recursive' walks one tree, 'directories' takes the first PDF of each subdirectory")
	flags.Int("workers", cfg.Workers, "Concurrent documents in recursive mode")
	flags.Bool("force-ocr", cfg.ForceOCR, "Use only OCR backends for the text path")
	flags.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	flags.Float64("ocr-dpi", cfg.OCRDPI, "Rasterization resolution for OCR")
	flags.String("tesseract", cfg.Tesseract, "Tesseract binary")
	flags.String("ocr-lang", cfg.OCRLang, "Tesseract language")
	flags.StringSlice("backends", cfg.Backends, "Ordered text backends (native, layout, ocr)")
	flags.String("vocabulary", cfg.Vocabulary, "YAML file overriding the built-in parser vocabulary")
	flags.String("dir", cfg.PDFDirectory, "Directory MCP tool paths must stay within (MCP server only)")
	flags.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	return flags
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		_ = v.BindPFlag(f.Name, f)
	})
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(flags *pflag.FlagSet) {
	name := flags.Name()
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", name)
		fmt.Fprintf(os.Stderr, "\nDRAW parser - converts DD2977 risk assessment PDFs to JSON\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s form.pdf                                   # one record into %s\n", name, DefaultOutDir)
		fmt.Fprintf(os.Stderr, "  %s --batch ./draws                            # every PDF below ./draws\n", name)
		fmt.Fprintf(os.Stderr, "  %s --batch --mode=directories ./1-2CR ./3-2CR # first PDF per subdirectory\n", name)
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  DRAW_OUTDIR         Output directory\n")
		fmt.Fprintf(os.Stderr, "  DRAW_MODE           Batch mode\n")
		fmt.Fprintf(os.Stderr, "  DRAW_FORCE_OCR      Force OCR\n")
		fmt.Fprintf(os.Stderr, "  DRAW_BACKENDS       Text backend order\n")
		fmt.Fprintf(os.Stderr, "  DRAW_LOGLEVEL       Log level\n")
		fmt.Fprintf(os.Stderr, "  DRAW_MAXFILESIZE    Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag(args []string) error {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.OutDir = v.GetString("outdir")
	cfg.SkipReport = v.GetString("skip-report")
	cfg.Batch = v.GetBool("batch")
	cfg.Mode = strings.ToLower(v.GetString("mode"))
	cfg.Workers = v.GetInt("workers")
	cfg.ForceOCR = v.GetBool("force-ocr")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.OCRDPI = v.GetFloat64("ocr-dpi")
	cfg.Tesseract = v.GetString("tesseract")
	cfg.OCRLang = v.GetString("ocr-lang")
	cfg.Backends = v.GetStringSlice("backends")
	cfg.Vocabulary = v.GetString("vocabulary")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.LogLevel = strings.ToLower(v.GetString("loglevel"))
}

var validate = validator.New()

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return c.describe(fieldErrs[0])
		}
		return err
	}

	if _, err := c.BackendOrder(); err != nil {
		return err
	}

	if c.PDFDirectory != "" {
		info, err := os.Stat(c.PDFDirectory)
		if err != nil {
			return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("PDF directory %s is not a directory", c.PDFDirectory)
		}
	}

	return nil
}

func (c *Config) describe(fe validator.FieldError) error {
	switch fe.Field() {
	case "LogLevel":
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	case "Mode":
		return errors.New("mode must be either 'recursive' or 'directories'")
	case "MaxFileSize":
		return errors.New("maximum file size must be positive")
	case "Workers":
		return errors.New("workers must be between 1 and 64")
	case "OCRDPI":
		return errors.New("ocr dpi must be between 72 and 1200")
	default:
		return fmt.Errorf("%s failed the %q check", strings.ToLower(fe.Field()), fe.Tag())
	}
}

// BackendOrder parses the configured text backend list
func (c *Config) BackendOrder() ([]text.BackendType, error) {
	return text.ParseOrder(c.Backends)
}

// TextConfig returns the text acquisition settings
func (c *Config) TextConfig() (text.Config, error) {
	order, err := c.BackendOrder()
	if err != nil {
		return text.Config{}, err
	}
	return text.Config{
		Order:     order,
		OCRDPI:    c.OCRDPI,
		Tesseract: c.Tesseract,
		OCRLang:   c.OCRLang,
	}, nil
}

// EngineOptions returns the extraction engine settings, loading the
// vocabulary override when one is configured.
func (c *Config) EngineOptions() (pdf.Options, error) {
	textCfg, err := c.TextConfig()
	if err != nil {
		return pdf.Options{}, err
	}

	vocab := draw.DefaultVocabulary()
	if c.Vocabulary != "" {
		if vocab, err = draw.LoadVocabulary(c.Vocabulary); err != nil {
			return pdf.Options{}, fmt.Errorf("cannot load vocabulary %s: %w", c.Vocabulary, err)
		}
	}

	return pdf.Options{
		MaxFileSize: c.MaxFileSize,
		RootDir:     c.PDFDirectory,
		Text:        textCfg,
		Vocabulary:  vocab,
	}, nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{OutDir: %s, Batch: %t, Mode: %s, ForceOCR: %t, Backends: %s, LogLevel: %s, MaxFileSize: %d}",
		c.OutDir, c.Batch, c.Mode, c.ForceOCR, strings.Join(c.Backends, ","), c.LogLevel, c.MaxFileSize)
}

// IsDirectoriesMode returns true if a batch takes one PDF per subdirectory
func (c *Config) IsDirectoriesMode() bool {
	return c.Mode == ModeDirectories
}

func backendNames(order []text.BackendType) []string {
	names := make([]string, len(order))
	for i, b := range order {
		names[i] = string(b)
	}
	return names
}
