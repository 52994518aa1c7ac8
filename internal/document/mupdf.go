package document

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/joseph-ayodele/docconv/internal/common"
)

// MuPDFBackend reads PDF and the e-book formats MuPDF supports.
type MuPDFBackend struct {
	dpi int
}

func NewMuPDFBackend(dpi int) *MuPDFBackend {
	return &MuPDFBackend{dpi: dpi}
}

func (b *MuPDFBackend) Name() string { return BackendMuPDF }

func (b *MuPDFBackend) Probe(context.Context) Capabilities {
	return Capabilities{
		Backend:   BackendMuPDF,
		Available: true,
		Version:   moduleVersion("github.com/gen2brain/go-fitz"),
		Render:    true,
		Text:      true,
	}
}

func (b *MuPDFBackend) Open(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, common.ConversionFailed(fmt.Sprintf("open %s", path), err)
	}
	return &mupdfDocument{doc: doc, pages: doc.NumPage(), dpi: float64(b.dpi)}, nil
}

type mupdfDocument struct {
	doc   *fitz.Document
	pages int
	dpi   float64
}

func (d *mupdfDocument) PageCount() int { return d.pages }

func (d *mupdfDocument) RenderPage(ctx context.Context, index int) ([]byte, error) {
	if err := checkIndex(index, d.pages); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	png, err := d.doc.ImagePNG(index, d.dpi)
	if err != nil {
		return nil, fmt.Errorf("mupdf render: %w", err)
	}
	return png, nil
}

func (d *mupdfDocument) PageText(ctx context.Context, index int) (string, error) {
	if err := checkIndex(index, d.pages); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := d.doc.Text(index)
	if err != nil {
		return "", fmt.Errorf("mupdf text: %w", err)
	}
	return text, nil
}

func (d *mupdfDocument) PageImages(context.Context, int) ([]ImageInfo, error) {
	return nil, common.ErrUnsupported
}

func (d *mupdfDocument) Close() error {
	return d.doc.Close()
}
