// Package document opens input files through a pluggable backend and exposes
// page rasterization, the embedded text layer and image listing.
package document

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"

	"github.com/joseph-ayodele/docconv/constants"
	"github.com/joseph-ayodele/docconv/internal/command"
	"github.com/joseph-ayodele/docconv/internal/common"
)

// Backend names.
const (
	BackendMuPDF   = "mupdf"
	BackendPoppler = "poppler"
	BackendPDF     = "pdf"
	BackendImage   = "image"
)

// DefaultDPI is the rasterization resolution when none is configured.
const DefaultDPI = 150

// ImageInfo is one picture embedded in a page.
type ImageInfo struct {
	Page   int `json:"page"` // 1-based
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Document is an opened input. Page indexes are 0-based.
// A Document is not safe for concurrent use.
type Document interface {
	PageCount() int
	RenderPage(ctx context.Context, index int) ([]byte, error)
	PageText(ctx context.Context, index int) (string, error)
	PageImages(ctx context.Context, index int) ([]ImageInfo, error)
	Close() error
}

// Capabilities is what a backend reported when probed.
type Capabilities struct {
	Backend   string `json:"backend"`
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Render    bool   `json:"render"`
	Text      bool   `json:"text"`
	Images    bool   `json:"images"`
	Reason    string `json:"reason,omitempty"`
}

// Backend opens documents of the formats it understands.
type Backend interface {
	Name() string
	Probe(ctx context.Context) Capabilities
	Open(ctx context.Context, path string) (Document, error)
}

// NewBackend returns the backend configured by name.
func NewBackend(cfg common.DocumentConfig, dpi int, runner command.Runner, logger *slog.Logger) (Backend, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	switch cfg.Backend {
	case "", BackendMuPDF:
		return NewMuPDFBackend(dpi), nil
	case BackendPoppler:
		return NewPopplerBackend(PopplerConfig{
			Pdfinfo:   cfg.Pdfinfo,
			Pdftoppm:  cfg.Pdftoppm,
			Pdftotext: cfg.Pdftotext,
			Pdfimages: cfg.Pdfimages,
			DPI:       dpi,
		}, runner, logger), nil
	case BackendPDF:
		return NewPDFBackend(), nil
	default:
		return nil, common.InvalidInput(fmt.Sprintf("unknown document backend %q", cfg.Backend), nil)
	}
}

// checkIndex guards page access shared by every backend.
func checkIndex(index, count int) error {
	if index < 0 || index >= count {
		return fmt.Errorf("page index %d out of range [0,%d)", index, count)
	}
	return nil
}

// Registry picks a backend per input and caches the capabilities probed at startup.
type Registry struct {
	primary  Backend
	backends map[string]Backend
	caps     map[string]Capabilities
}

// NewRegistry registers primary as the default plus any format-specific extras.
func NewRegistry(primary Backend, extras ...Backend) *Registry {
	r := &Registry{
		primary:  primary,
		backends: map[string]Backend{primary.Name(): primary},
		caps:     map[string]Capabilities{},
	}
	for _, b := range extras {
		if b == nil {
			continue
		}
		if _, ok := r.backends[b.Name()]; !ok {
			r.backends[b.Name()] = b
		}
	}
	return r
}

// Negotiate probes every backend once.
func (r *Registry) Negotiate(ctx context.Context) map[string]Capabilities {
	for name, b := range r.backends {
		r.caps[name] = b.Probe(ctx)
	}
	return r.caps
}

// Capabilities returns the probed capabilities for name. Unprobed backends report unavailable.
func (r *Registry) Capabilities(name string) Capabilities {
	if c, ok := r.caps[name]; ok {
		return c
	}
	return Capabilities{Backend: name, Reason: "not probed"}
}

// Primary returns the configured default backend.
func (r *Registry) Primary() Backend { return r.primary }

// Resolve chooses the backend for path by extension. Images go to the image
// backend, e-books to mupdf when it is available; everything else to primary.
func (r *Registry) Resolve(path string) (Backend, Capabilities) {
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.IMAGE:
		if b, ok := r.available(BackendImage); ok {
			return b, r.caps[BackendImage]
		}
	case constants.EBOOK:
		if b, ok := r.available(BackendMuPDF); ok {
			return b, r.caps[BackendMuPDF]
		}
	}
	return r.primary, r.Capabilities(r.primary.Name())
}

func (r *Registry) available(name string) (Backend, bool) {
	b, ok := r.backends[name]
	if !ok || !r.caps[name].Available {
		return nil, false
	}
	return b, true
}

// moduleVersion reports the linked version of a Go library backend.
func moduleVersion(path string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, dep := range info.Deps {
		if dep.Path == path {
			if dep.Replace != nil {
				return dep.Replace.Version
			}
			return dep.Version
		}
	}
	return ""
}
