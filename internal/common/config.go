package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Log      LogConfig
	OCR      OCRConfig
	Document DocumentConfig
	Cache    CacheConfig
	S3       S3Config
	Timeout  time.Duration
}

// LogConfig holds logging settings. Logs always go to stderr.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" | "text"
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine      string `mapstructure:"engine"`    // "tesseract" | "gosseract"
	Tesseract   string `mapstructure:"tesseract"` // binary name or absolute path
	Lang        string `mapstructure:"lang"`
	TessdataDir string `mapstructure:"tessdata_dir"`
	PSM         int    `mapstructure:"psm"`
	OEM         int    `mapstructure:"oem"`
	DPI         int    `mapstructure:"dpi"` // rasterization DPI
}

// DocumentConfig selects the document backend and its external binaries.
type DocumentConfig struct {
	Backend   string `mapstructure:"backend"` // "mupdf" | "poppler" | "pdf"
	Pdfinfo   string `mapstructure:"pdfinfo"`
	Pdftoppm  string `mapstructure:"pdftoppm"`
	Pdftotext string `mapstructure:"pdftotext"`
	Pdfimages string `mapstructure:"pdfimages"`
	MaxPages  int    `mapstructure:"max_pages"` // 0 = no limit
}

// CacheConfig holds the optional result cache settings. An empty DSN disables the cache.
type CacheConfig struct {
	DSN         string        `mapstructure:"dsn"`
	MaxConns    int32         `mapstructure:"max_conns"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// S3Config holds settings for s3:// inputs.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Supported engine and backend names.
var (
	OCREngines       = []string{"tesseract", "gosseract"}
	DocumentBackends = []string{"mupdf", "poppler", "pdf"}
	LogFormats       = []string{"json", "text"}
)

// LoadConfig reads configuration from DOCCONV_-prefixed environment variables and,
// when DOCCONV_CONFIG names a file, from that file first.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCCONV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("ocr.engine", "tesseract")
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.lang", "eng")
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.psm", 0)
	v.SetDefault("ocr.oem", 0)
	v.SetDefault("ocr.dpi", 150)

	v.SetDefault("document.backend", "mupdf")
	v.SetDefault("document.pdfinfo", "pdfinfo")
	v.SetDefault("document.pdftoppm", "pdftoppm")
	v.SetDefault("document.pdftotext", "pdftotext")
	v.SetDefault("document.pdfimages", "pdfimages")
	v.SetDefault("document.max_pages", 0)

	v.SetDefault("cache.dsn", "")
	v.SetDefault("cache.max_conns", 4)
	v.SetDefault("cache.dial_timeout", "3s")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")

	v.SetDefault("timeout", "0s")

	// TESSDATA_PREFIX is honoured as tesseract itself does.
	_ = v.BindEnv("ocr.tessdata_dir", "DOCCONV_OCR_TESSDATA_DIR", "TESSDATA_PREFIX")
	_ = v.BindEnv("config", "DOCCONV_CONFIG")

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, NewAppError(CodeConfig, fmt.Sprintf("read config file %s", file), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, NewAppError(CodeConfig, "decode configuration", err)
	}
	cfg.Timeout = v.GetDuration("timeout")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("ocr.engine", c.OCR.Engine, OneOf(OCREngines...)).
		Field("document.backend", c.Document.Backend, OneOf(DocumentBackends...)).
		Field("log.format", c.Log.Format, OneOf(LogFormats...)).
		Field("ocr.dpi", c.OCR.DPI, IntRange(36, 1200)).
		Field("document.max_pages", c.Document.MaxPages, IntRange(0, 100000))
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
