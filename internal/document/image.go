package document

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/docconv/internal/common"
)

// ImageBackend treats a raster image as a one-page document without a text layer.
type ImageBackend struct{}

func NewImageBackend() *ImageBackend { return &ImageBackend{} }

func (b *ImageBackend) Name() string { return BackendImage }

func (b *ImageBackend) Probe(context.Context) Capabilities {
	return Capabilities{Backend: BackendImage, Available: true, Render: true, Images: true}
}

// Open decodes the file once; RenderPage serves the PNG re-encoding.
func (b *ImageBackend) Open(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, common.ConversionFailed(fmt.Sprintf("open image %s", path), err)
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, common.ConversionFailed(fmt.Sprintf("decode image %s", path), err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, common.ConversionFailed(fmt.Sprintf("encode %s image as png", format), err)
	}
	bounds := img.Bounds()
	return &imageDocument{png: buf.Bytes(), width: bounds.Dx(), height: bounds.Dy()}, nil
}

type imageDocument struct {
	png           []byte
	width, height int
}

func (d *imageDocument) PageCount() int { return 1 }

func (d *imageDocument) RenderPage(_ context.Context, index int) ([]byte, error) {
	if err := checkIndex(index, 1); err != nil {
		return nil, err
	}
	return d.png, nil
}

// PageText is always empty: images have no text layer.
func (d *imageDocument) PageText(_ context.Context, index int) (string, error) {
	return "", checkIndex(index, 1)
}

func (d *imageDocument) PageImages(_ context.Context, index int) ([]ImageInfo, error) {
	if err := checkIndex(index, 1); err != nil {
		return nil, err
	}
	return []ImageInfo{{Page: 1, Width: d.width, Height: d.height}}, nil
}

func (d *imageDocument) Close() error { return nil }
