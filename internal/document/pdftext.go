package document

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/docconv/internal/common"
)

// PDFBackend reads the text layer in pure Go. It cannot rasterize.
type PDFBackend struct{}

func NewPDFBackend() *PDFBackend { return &PDFBackend{} }

func (b *PDFBackend) Name() string { return BackendPDF }

func (b *PDFBackend) Probe(context.Context) Capabilities {
	return Capabilities{
		Backend:   BackendPDF,
		Available: true,
		Version:   moduleVersion("github.com/ledongthuc/pdf"),
		Text:      true,
		Images:    true,
	}
}

func (b *PDFBackend) Open(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, common.ConversionFailed(fmt.Sprintf("open pdf %s", path), err)
	}
	return &pdfDocument{file: f, reader: r, fonts: make(map[string]*pdf.Font)}, nil
}

type pdfDocument struct {
	file   *os.File
	reader *pdf.Reader
	fonts  map[string]*pdf.Font
}

func (d *pdfDocument) PageCount() int { return d.reader.NumPage() }

func (d *pdfDocument) RenderPage(context.Context, int) ([]byte, error) {
	return nil, common.Unavailable("pdf backend cannot rasterize pages", common.ErrUnsupported)
}

func (d *pdfDocument) page(index int) (pdf.Page, error) {
	if err := checkIndex(index, d.PageCount()); err != nil {
		return pdf.Page{}, err
	}
	p := d.reader.Page(index + 1)
	if p.V.IsNull() {
		return pdf.Page{}, fmt.Errorf("page %d has no page object", index+1)
	}
	return p, nil
}

func (d *pdfDocument) PageText(ctx context.Context, index int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := d.page(index)
	if err != nil {
		return "", err
	}
	for _, name := range p.Fonts() {
		if _, ok := d.fonts[name]; !ok {
			f := p.Font(name)
			d.fonts[name] = &f
		}
	}
	text, err := p.GetPlainText(d.fonts)
	if err != nil {
		return "", fmt.Errorf("read pdf page %d: %w", index+1, err)
	}
	return text, nil
}

// PageImages lists the page's image XObjects with their pixel dimensions.
func (d *pdfDocument) PageImages(ctx context.Context, index int) ([]ImageInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := d.page(index)
	if err != nil {
		return nil, err
	}
	xobjects := p.Resources().Key("XObject")
	var imgs []ImageInfo
	for _, name := range xobjects.Keys() {
		xo := xobjects.Key(name)
		if xo.Key("Subtype").Name() != "Image" {
			continue
		}
		imgs = append(imgs, ImageInfo{
			Page:   index + 1,
			Width:  int(xo.Key("Width").Int64()),
			Height: int(xo.Key("Height").Int64()),
		})
	}
	return imgs, nil
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}
