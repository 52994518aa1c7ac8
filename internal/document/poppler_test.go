package document_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docconv/internal/common"
	"github.com/joseph-ayodele/docconv/internal/document"
	"github.com/joseph-ayodele/docconv/mocks"
)

const pdfinfoOut = `Title:           invoice
Producer:        pdfTeX-1.40.25
Pages:           2
Encrypted:       no
Page size:       595.276 x 841.89 pts (A4)
`

const pdfimagesOut = `page   num  type   width height color comp bpc  enc interp  object ID x-ppi y-ppi size ratio
--------------------------------------------------------------------------------------------
   2     0 image    1700  2200  gray    1   8  jpeg   no        10  0   200   200  312K 8.5%
   2     1 smask    1700  2200  gray    1   8  image  no        10  0   200   200  1.2K 0.0%
   2     2 image     640   480  rgb     3   8  image  no        12  0    72    72   20K 2.2%
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func openPoppler(t *testing.T, runner *mocks.MockRunner) (document.Document, string) {
	t.Helper()
	path := writeFile(t, "in.pdf", []byte("%PDF-1.7"))
	runner.On("Run", mock.Anything, "pdfinfo", []string{path}).Return([]byte(pdfinfoOut), []byte(nil), nil)

	doc, err := document.NewPopplerBackend(document.PopplerConfig{DPI: 200}, runner, nil).Open(context.Background(), path)
	require.NoError(t, err)
	return doc, path
}

func TestPoppler_PageCount(t *testing.T) {
	runner := new(mocks.MockRunner)
	doc, _ := openPoppler(t, runner)
	defer func() { _ = doc.Close() }()

	assert.Equal(t, 2, doc.PageCount())
}

func TestPoppler_PageText(t *testing.T) {
	runner := new(mocks.MockRunner)
	doc, path := openPoppler(t, runner)
	runner.On("Run", mock.Anything, "pdftotext",
		[]string{"-f", "2", "-l", "2", "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-"}).
		Return([]byte("second page\n\f"), []byte(nil), nil)

	text, err := doc.PageText(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "second page\n", text)
	runner.AssertExpectations(t)
}

func TestPoppler_PageImages(t *testing.T) {
	runner := new(mocks.MockRunner)
	doc, path := openPoppler(t, runner)
	runner.On("Run", mock.Anything, "pdfimages", []string{"-list", "-f", "2", "-l", "2", path}).
		Return([]byte(pdfimagesOut), []byte(nil), nil)

	imgs, err := doc.PageImages(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []document.ImageInfo{
		{Page: 2, Width: 1700, Height: 2200},
		{Page: 2, Width: 640, Height: 480},
	}, imgs)
}

func TestPoppler_RenderPage(t *testing.T) {
	runner := new(mocks.MockRunner)
	doc, path := openPoppler(t, runner)
	runner.On("Run", mock.Anything, "pdftoppm", mock.MatchedBy(func(args []string) bool {
		return len(args) == 10 && args[2] == "200" && args[4] == "1" && args[8] == path
	})).Run(func(a mock.Arguments) {
		args := a.Get(2).([]string)
		_ = os.WriteFile(args[9]+".png", []byte("png-bytes"), 0o644)
	}).Return([]byte(nil), []byte(nil), nil)

	png, err := doc.RenderPage(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), png)
}

func TestPoppler_PageIndexOutOfRange(t *testing.T) {
	runner := new(mocks.MockRunner)
	doc, _ := openPoppler(t, runner)

	_, err := doc.PageText(context.Background(), 2)
	assert.Error(t, err)
	_, err = doc.RenderPage(context.Background(), -1)
	assert.Error(t, err)
}

func TestPoppler_OpenMissingFile(t *testing.T) {
	runner := new(mocks.MockRunner)

	_, err := document.NewPopplerBackend(document.PopplerConfig{}, runner, nil).
		Open(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))

	assert.ErrorIs(t, err, common.ErrConversion)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestPoppler_Probe(t *testing.T) {
	runner := new(mocks.MockRunner)
	runner.On("LookPath", "pdfinfo").Return("/usr/bin/pdfinfo", nil)
	runner.On("LookPath", "pdftoppm").Return("/usr/bin/pdftoppm", nil)
	runner.On("LookPath", "pdftotext").Return("/usr/bin/pdftotext", nil)
	runner.On("LookPath", "pdfimages").Return("", errors.New("not found"))
	runner.On("Run", mock.Anything, "pdfinfo", []string{"-v"}).
		Return([]byte(nil), []byte("pdfinfo version 24.02.0\nCopyright 2005-2024 The Poppler Developers\n"), nil)

	caps := document.NewPopplerBackend(document.PopplerConfig{}, runner, nil).Probe(context.Background())

	assert.True(t, caps.Available)
	assert.Equal(t, "24.02.0", caps.Version)
	assert.True(t, caps.Render)
	assert.True(t, caps.Text)
	assert.False(t, caps.Images)
}
