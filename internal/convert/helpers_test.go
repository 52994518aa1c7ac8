package convert_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/joseph-ayodele/docconv/internal/convert"
	"github.com/joseph-ayodele/docconv/internal/document"
	"github.com/joseph-ayodele/docconv/internal/ocr"
	"github.com/joseph-ayodele/docconv/mocks"
)

// fakeDoc serves page texts; every page renders to its index as a one-byte "png".
type fakeDoc struct {
	texts    []string
	images   map[int][]document.ImageInfo
	textErr  map[int]error
	rendered []int
	closed   int
}

func (d *fakeDoc) PageCount() int { return len(d.texts) }

func (d *fakeDoc) RenderPage(_ context.Context, i int) ([]byte, error) {
	d.rendered = append(d.rendered, i)
	return []byte{byte(i)}, nil
}

func (d *fakeDoc) PageText(_ context.Context, i int) (string, error) {
	if err := d.textErr[i]; err != nil {
		return "", err
	}
	return d.texts[i], nil
}

func (d *fakeDoc) PageImages(_ context.Context, i int) ([]document.ImageInfo, error) {
	return d.images[i], nil
}

func (d *fakeDoc) Close() error {
	d.closed++
	return nil
}

type fakeBackend struct {
	caps    document.Capabilities
	doc     *fakeDoc
	openErr error
}

func (b *fakeBackend) Name() string { return b.caps.Backend }

func (b *fakeBackend) Probe(context.Context) document.Capabilities { return b.caps }

func (b *fakeBackend) Open(context.Context, string) (document.Document, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.doc, nil
}

func fullCaps() document.Capabilities {
	return document.Capabilities{Backend: document.BackendMuPDF, Available: true, Render: true, Text: true, Images: true}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// word is a confident detection at y.
func word(y float64, text string) ocr.Detection {
	return ocr.Detection{Quad: ocr.RectQuad(0, y, 10, 10), Text: text, Confidence: 0.9}
}

// pageEngine answers Recognize by the page index encoded in the fake png.
func pageEngine(t *testing.T, byPage map[int][]ocr.Detection, failPages map[int]error) *mocks.MockEngine {
	t.Helper()
	eng := new(mocks.MockEngine)
	eng.On("Name").Return("tesseract").Maybe()
	eng.On("Close").Return(nil)
	eng.On("Recognize", mock.Anything, mock.Anything).Return(
		func(_ context.Context, png []byte) ([]ocr.Detection, error) {
			page := int(png[0])
			if err := failPages[page]; err != nil {
				return nil, err
			}
			return byPage[page], nil
		}, nil)
	return eng
}

func providerFor(eng ocr.Engine) *mocks.MockProvider {
	p := new(mocks.MockProvider)
	p.On("Name").Return("tesseract").Maybe()
	p.On("Open", mock.Anything).Return(eng, nil)
	return p
}

func newConverter(provider ocr.Provider, ocrAvailable bool, backend document.Backend) *convert.Converter {
	reg := document.NewRegistry(backend)
	reg.Negotiate(context.Background())
	caps := ocr.Capabilities{Engine: "tesseract", Available: ocrAvailable}
	if !ocrAvailable {
		caps.Reason = "tesseract not found"
	}
	return convert.NewConverter(provider, caps, reg, 0, quietLogger())
}

var errBoom = errors.New("boom")
