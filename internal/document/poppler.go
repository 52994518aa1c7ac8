package document

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/docconv/internal/command"
	"github.com/joseph-ayodele/docconv/internal/common"
)

// PopplerConfig names the poppler-utils binaries.
type PopplerConfig struct {
	Pdfinfo   string
	Pdftoppm  string
	Pdftotext string
	Pdfimages string
	DPI       int
}

// PopplerBackend shells out to poppler-utils. PDF only.
type PopplerBackend struct {
	cfg    PopplerConfig
	runner command.Runner
	logger *slog.Logger
}

func NewPopplerBackend(cfg PopplerConfig, runner command.Runner, logger *slog.Logger) *PopplerBackend {
	if cfg.Pdfinfo == "" {
		cfg.Pdfinfo = "pdfinfo"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdfimages == "" {
		cfg.Pdfimages = "pdfimages"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PopplerBackend{cfg: cfg, runner: runner, logger: logger}
}

func (b *PopplerBackend) Name() string { return BackendPoppler }

// Probe requires pdfinfo; the other tools each gate one capability.
func (b *PopplerBackend) Probe(ctx context.Context) Capabilities {
	caps := Capabilities{Backend: BackendPoppler}
	if _, err := b.runner.LookPath(b.cfg.Pdfinfo); err != nil {
		caps.Reason = fmt.Sprintf("%s not found: %v", b.cfg.Pdfinfo, err)
		return caps
	}
	caps.Available = true
	// pdfinfo -v prints its banner on stderr and may exit non-zero on old releases
	stdout, stderr, _ := b.runner.Run(ctx, b.cfg.Pdfinfo, "-v")
	caps.Version = parsePopplerVersion(append(stderr, stdout...))

	_, err := b.runner.LookPath(b.cfg.Pdftoppm)
	caps.Render = err == nil
	_, err = b.runner.LookPath(b.cfg.Pdftotext)
	caps.Text = err == nil
	_, err = b.runner.LookPath(b.cfg.Pdfimages)
	caps.Images = err == nil
	return caps
}

func (b *PopplerBackend) Open(ctx context.Context, path string) (Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, common.ConversionFailed(fmt.Sprintf("open %s", path), err)
	}
	out, errb, err := b.runner.Run(ctx, b.cfg.Pdfinfo, path)
	if err != nil {
		return nil, common.ConversionFailed(
			fmt.Sprintf("pdfinfo %s: %s", path, strings.TrimSpace(command.Truncate(string(errb), 512))), err)
	}
	pages, err := parsePdfinfoPages(out)
	if err != nil {
		return nil, common.ConversionFailed(fmt.Sprintf("pdfinfo %s", path), err)
	}
	return &popplerDocument{backend: b, path: path, pages: pages}, nil
}

type popplerDocument struct {
	backend *PopplerBackend
	path    string
	pages   int
}

func (d *popplerDocument) PageCount() int { return d.pages }

// RenderPage runs `pdftoppm -png -r <dpi> -f n -l n -singlefile <in> <prefix>`.
func (d *popplerDocument) RenderPage(ctx context.Context, index int) ([]byte, error) {
	if err := checkIndex(index, d.pages); err != nil {
		return nil, err
	}
	tmpDir, err := os.MkdirTemp("", "docconv-pp-*")
	if err != nil {
		return nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			d.backend.logger.Warn("failed to remove temp dir", "path", path, "error", err)
		}
	}(tmpDir)

	n := strconv.Itoa(index + 1)
	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := d.backend.runner.Run(ctx, d.backend.cfg.Pdftoppm,
		"-png", "-r", strconv.Itoa(d.backend.cfg.DPI), "-f", n, "-l", n, "-singlefile", d.path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(command.Truncate(string(errb), 512)))
	}
	png, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no image: %w", err)
	}
	return png, nil
}

// PageText runs `pdftotext -f n -l n -layout -enc UTF-8 -eol unix <in> -`.
func (d *popplerDocument) PageText(ctx context.Context, index int) (string, error) {
	if err := checkIndex(index, d.pages); err != nil {
		return "", err
	}
	n := strconv.Itoa(index + 1)
	out, errb, err := d.backend.runner.Run(ctx, d.backend.cfg.Pdftotext,
		"-f", n, "-l", n, "-layout", "-enc", "UTF-8", "-eol", "unix", d.path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(command.Truncate(string(errb), 512)))
	}
	// trailing form feed is the page separator
	return strings.TrimRight(string(out), "\f"), nil
}

// PageImages runs `pdfimages -list -f n -l n <in>`.
func (d *popplerDocument) PageImages(ctx context.Context, index int) ([]ImageInfo, error) {
	if err := checkIndex(index, d.pages); err != nil {
		return nil, err
	}
	n := strconv.Itoa(index + 1)
	out, errb, err := d.backend.runner.Run(ctx, d.backend.cfg.Pdfimages, "-list", "-f", n, "-l", n, d.path)
	if err != nil {
		return nil, fmt.Errorf("pdfimages: %w: %s", err, strings.TrimSpace(command.Truncate(string(errb), 512)))
	}
	return parsePdfimagesList(out), nil
}

func (d *popplerDocument) Close() error { return nil }

func parsePdfinfoPages(out []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, val, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(key) != "Pages" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("parse page count %q: %w", strings.TrimSpace(val), err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("pdfinfo output has no Pages line")
}

// parsePdfimagesList reads the table printed by `pdfimages -list`:
//
//	page   num  type   width height color comp bpc  enc interp  object ID ...
//	--------------------------------------------------------------------------
//	   1     0 image    1700  2200  gray    1   8  jpeg   no        10  0 ...
//
// smask and stencil rows are masks of another image and are skipped.
func parsePdfimagesList(out []byte) []ImageInfo {
	var imgs []ImageInfo
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 5 {
			continue
		}
		page, err := strconv.Atoi(f[0])
		if err != nil {
			continue // header or ruler
		}
		if f[2] != "image" {
			continue
		}
		w, errW := strconv.Atoi(f[3])
		h, errH := strconv.Atoi(f[4])
		if errW != nil || errH != nil {
			continue
		}
		imgs = append(imgs, ImageInfo{Page: page, Width: w, Height: h})
	}
	return imgs
}

func parsePopplerVersion(out []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if _, v, ok := strings.Cut(line, " version "); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
