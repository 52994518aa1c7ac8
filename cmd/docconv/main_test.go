package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hermeticEnv points every external binary at a name that cannot exist.
func hermeticEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DOCCONV_CONFIG", "")
	t.Setenv("DOCCONV_OCR_TESSERACT", "docconv-test-missing-tesseract")
	t.Setenv("DOCCONV_CACHE_DSN", "")
	t.Setenv("DOCCONV_LOG_LEVEL", "error")
	t.Setenv("DOCCONV_DOCUMENT_BACKEND", "pdf")
}

func runCLI(t *testing.T, args ...string) (int, map[string]any, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	out := map[string]any{}
	if stdout.Len() > 0 {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &out), stdout.String())
	}
	return code, out, stderr.String()
}

func TestRun_UnknownOperation(t *testing.T) {
	hermeticEnv(t)
	code, out, _ := runCLI(t, "frobnicate", "x.pdf")

	assert.Equal(t, 0, code)
	assert.Equal(t, "Unknown operation: frobnicate", out["error"])
	assert.Equal(t, "Unimplemented", out["code"])
	assert.Equal(t, false, out["success"])
}

func TestRun_MissingArguments(t *testing.T) {
	hermeticEnv(t)

	code, out, _ := runCLI(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, out["error"], "Usage")

	code, out, _ = runCLI(t, "convert")
	assert.Equal(t, 1, code)
	assert.Equal(t, "Usage: docconv convert <file_path> [options_json]", out["error"])
	assert.Equal(t, "InvalidArgument", out["code"])

	code, out, _ = runCLI(t, "export", "in.pdf")
	assert.Equal(t, 1, code)
	assert.Contains(t, out["error"], "Usage: docconv export")
}

func TestRun_MalformedOptions(t *testing.T) {
	hermeticEnv(t)

	code, out, _ := runCLI(t, "convert", "in.pdf", "{not json")
	assert.Equal(t, 1, code)
	assert.Equal(t, false, out["success"])

	code, _, _ = runCLI(t, "ocr", "in.pdf", `{"maxPages": -5}`)
	assert.Equal(t, 1, code)

	code, _, _ = runCLI(t, "extract", "in.pdf", `"total"`)
	assert.Equal(t, 1, code)
}

func TestRun_Version(t *testing.T) {
	hermeticEnv(t)
	code, out, _ := runCLI(t, "--version")

	assert.Equal(t, 0, code)
	assert.Equal(t, version, out["version"])
	assert.Equal(t, false, out["ocr_available"])
	assert.Equal(t, "tesseract", out["ocr_engine"])
	assert.Equal(t, "pdf", out["document_backend"])
	assert.Equal(t, true, out["document_backend_available"])
	assert.Equal(t, false, out["render_supported"])
	assert.Equal(t, true, out["text_supported"])
	assert.Equal(t, true, out["images_supported"])
}

func TestRun_FailedConversionExitsZero(t *testing.T) {
	hermeticEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	code, out, _ := runCLI(t, "embedded", missing)
	assert.Equal(t, 0, code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "", out["markdown"])
	assert.NotEmpty(t, out["error"])
}

func TestRun_OCRUnavailable(t *testing.T) {
	hermeticEnv(t)
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o600))

	code, out, _ := runCLI(t, "ocr", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["error"], "OCR")
	assert.Equal(t, "Unavailable", out["code"])
}

func TestRun_HelpIsJSONUsageError(t *testing.T) {
	hermeticEnv(t)

	for _, args := range [][]string{{"help"}, {"--help"}, {"-h"}, {"help", "convert"}} {
		code, out, _ := runCLI(t, args...)
		assert.Equal(t, 1, code, args)
		assert.Contains(t, out["error"], "Usage: docconv", args)
		assert.Equal(t, "InvalidArgument", out["code"], args)
	}

	code, out, _ := runCLI(t, "convert", "--help")
	assert.Equal(t, 1, code)
	assert.Contains(t, out["error"], "Usage: docconv convert <file_path> [options_json]")
}

func TestRun_InvalidS3URL(t *testing.T) {
	hermeticEnv(t)
	code, out, _ := runCLI(t, "convert", "s3://bucket-only")

	assert.Equal(t, 1, code)
	assert.Contains(t, out["error"], "s3")
}

func TestRun_LogsGoToStderr(t *testing.T) {
	hermeticEnv(t)
	t.Setenv("DOCCONV_LOG_LEVEL", "debug")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"--version"}, &stdout, &stderr)
	require.Equal(t, 0, code)

	assert.Contains(t, stderr.String(), "run_id")
	assert.NotContains(t, stdout.String(), "run_id")
}

func TestErrorMessage(t *testing.T) {
	err := usageArgs(1, 1, "Usage: docconv ocr <file_path>")(nil, nil)
	assert.Equal(t, "Usage: docconv ocr <file_path>", errorMessage(err))
}
