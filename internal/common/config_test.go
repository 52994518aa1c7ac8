package common_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docconv/internal/common"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("TESSDATA_PREFIX", "")

	cfg, err := common.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "tesseract", cfg.OCR.Engine)
	assert.Equal(t, "tesseract", cfg.OCR.Tesseract)
	assert.Equal(t, "eng", cfg.OCR.Lang)
	assert.Equal(t, 150, cfg.OCR.DPI)
	assert.Equal(t, "mupdf", cfg.Document.Backend)
	assert.Equal(t, "pdftoppm", cfg.Document.Pdftoppm)
	assert.Equal(t, 0, cfg.Document.MaxPages)
	assert.Empty(t, cfg.Cache.DSN)
	assert.Equal(t, 3*time.Second, cfg.Cache.DialTimeout)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DOCCONV_OCR_ENGINE", "gosseract")
	t.Setenv("DOCCONV_OCR_DPI", "300")
	t.Setenv("DOCCONV_DOCUMENT_BACKEND", "poppler")
	t.Setenv("DOCCONV_TIMEOUT", "90s")
	t.Setenv("TESSDATA_PREFIX", "/usr/share/tessdata")

	cfg, err := common.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "gosseract", cfg.OCR.Engine)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, "poppler", cfg.Document.Backend)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "/usr/share/tessdata", cfg.OCR.TessdataDir)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docconv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ocr:\n  lang: chi_sim+eng\ndocument:\n  backend: pdf\n"), 0o600))
	t.Setenv("DOCCONV_CONFIG", path)

	cfg, err := common.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "chi_sim+eng", cfg.OCR.Lang)
	assert.Equal(t, "pdf", cfg.Document.Backend)
}

func TestLoadConfig_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("DOCCONV_DOCUMENT_BACKEND", "docling")

	_, err := common.LoadConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Contains(t, err.Error(), "document.backend")
}

func TestConfigValidate_DPIRange(t *testing.T) {
	cfg := &common.Config{
		Log:      common.LogConfig{Format: "text"},
		OCR:      common.OCRConfig{Engine: "tesseract", DPI: 20},
		Document: common.DocumentConfig{Backend: "mupdf"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ocr.dpi")

	cfg.OCR.DPI = 72
	assert.NoError(t, cfg.Validate())
}
