package ocr

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/docconv/constants"
	"github.com/joseph-ayodele/docconv/internal/command"
	"github.com/joseph-ayodele/docconv/internal/common"
)

// tsvWordLevel is the tesseract TSV level for single words.
const tsvWordLevel = 5

// TesseractProvider runs the tesseract CLI through a command.Runner.
type TesseractProvider struct {
	cfg    EngineConfig
	runner command.Runner
	logger *slog.Logger
}

func NewTesseractProvider(cfg EngineConfig, runner command.Runner, logger *slog.Logger) *TesseractProvider {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractProvider{cfg: cfg, runner: runner, logger: logger}
}

func (p *TesseractProvider) Name() string { return constants.MethodTesseract }

// Probe checks the binary is on PATH and reads its version banner.
func (p *TesseractProvider) Probe(ctx context.Context) Capabilities {
	caps := Capabilities{Engine: p.Name()}
	if _, err := p.runner.LookPath(p.cfg.Binary); err != nil {
		caps.Reason = fmt.Sprintf("%s not found: %v", p.cfg.Binary, err)
		return caps
	}
	stdout, stderr, err := p.runner.Run(ctx, p.cfg.Binary, "--version")
	if err != nil {
		caps.Reason = fmt.Sprintf("%s --version: %v", p.cfg.Binary, err)
		return caps
	}
	caps.Available = true
	// older builds print the banner on stderr
	caps.Version = parseVersionBanner(stdout)
	if caps.Version == "" {
		caps.Version = parseVersionBanner(stderr)
	}
	return caps
}

func (p *TesseractProvider) Open(ctx context.Context) (Engine, error) {
	if _, err := p.runner.LookPath(p.cfg.Binary); err != nil {
		return nil, common.Unavailable("tesseract binary not found", err)
	}
	return &tesseractEngine{cfg: p.cfg, runner: p.runner, logger: p.logger}, nil
}

type tesseractEngine struct {
	cfg    EngineConfig
	runner command.Runner
	logger *slog.Logger
}

func (e *tesseractEngine) Name() string { return constants.MethodTesseract }

func (e *tesseractEngine) Close() error { return nil }

// Recognize writes the page to a temp file and runs `tesseract <png> stdout ... tsv`.
func (e *tesseractEngine) Recognize(ctx context.Context, png []byte) ([]Detection, error) {
	tmp, err := os.CreateTemp("", "docconv-page-*.png")
	if err != nil {
		return nil, fmt.Errorf("create temp image: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(png); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp image: %w", err)
	}

	stdout, stderr, err := e.runner.Run(ctx, e.cfg.Binary, e.args(tmp.Name())...)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(command.Truncate(string(stderr), 512)))
	}
	dets, err := ParseTSV(stdout)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("tesseract recognized", "lines", len(dets))
	return dets, nil
}

func (e *tesseractEngine) args(imagePath string) []string {
	args := []string{imagePath, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(e.cfg.DPI))
	}
	return append(args, "tsv")
}

// ParseTSV converts tesseract TSV output into one detection per text line.
// Word rows sharing (page, block, par, line) are merged: the quad is the union
// of their boxes, the text joins them in word_num order and the confidence is
// their mean.
// Columns: level page_num block_num par_num line_num word_num left top width height conf text
func ParseTSV(data []byte) ([]Detection, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var order []tsvLineKey
	lines := map[tsvLineKey]*tsvLine{}
	header := true
	for sc.Scan() {
		row := sc.Text()
		if header {
			header = false
			if !strings.HasPrefix(row, "level") {
				return nil, fmt.Errorf("unexpected tesseract tsv header %q", command.Truncate(row, 80))
			}
			continue
		}
		w, key, ok := parseTSVWord(row)
		if !ok {
			continue
		}
		l, seen := lines[key]
		if !seen {
			l = &tsvLine{left: w.left, top: w.top, right: w.right, bottom: w.bottom}
			lines[key] = l
			order = append(order, key)
		}
		l.add(w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tesseract tsv: %w", err)
	}

	dets := make([]Detection, 0, len(order))
	for _, key := range order {
		dets = append(dets, lines[key].detection())
	}
	return dets, nil
}

type tsvLineKey struct {
	page, block, par, line int
}

type tsvWord struct {
	num                      int
	left, top, right, bottom float64
	conf                     float64
	text                     string
}

type tsvLine struct {
	words                    []tsvWord
	left, top, right, bottom float64
	confSum                  float64
}

func (l *tsvLine) add(w tsvWord) {
	l.words = append(l.words, w)
	l.left = min(l.left, w.left)
	l.top = min(l.top, w.top)
	l.right = max(l.right, w.right)
	l.bottom = max(l.bottom, w.bottom)
	l.confSum += w.conf
}

func (l *tsvLine) detection() Detection {
	sort.SliceStable(l.words, func(i, j int) bool { return l.words[i].num < l.words[j].num })
	texts := make([]string, len(l.words))
	for i, w := range l.words {
		texts[i] = w.text
	}
	return Detection{
		Quad:       RectQuad(l.left, l.top, l.right-l.left, l.bottom-l.top),
		Text:       strings.Join(texts, " "),
		Confidence: min(l.confSum/float64(len(l.words))/100, 1),
	}
}

// parseTSVWord reads one level-5 row. Rows without a confidence or text are skipped.
func parseTSVWord(row string) (tsvWord, tsvLineKey, bool) {
	cols := strings.Split(row, "\t")
	if len(cols) < 12 {
		return tsvWord{}, tsvLineKey{}, false
	}
	ints := make([]int, 6)
	for i := range ints {
		n, err := strconv.Atoi(cols[i])
		if err != nil {
			return tsvWord{}, tsvLineKey{}, false
		}
		ints[i] = n
	}
	if ints[0] != tsvWordLevel {
		return tsvWord{}, tsvLineKey{}, false
	}
	text := strings.TrimSpace(strings.Join(cols[11:], "\t"))
	conf, err := strconv.ParseFloat(cols[10], 64)
	if err != nil || conf < 0 || text == "" {
		return tsvWord{}, tsvLineKey{}, false
	}
	var box [4]float64
	for i := range box {
		v, err := strconv.ParseFloat(cols[6+i], 64)
		if err != nil {
			return tsvWord{}, tsvLineKey{}, false
		}
		box[i] = v
	}
	w := tsvWord{
		num:    ints[5],
		left:   box[0],
		top:    box[1],
		right:  box[0] + box[2],
		bottom: box[1] + box[3],
		conf:   conf,
		text:   text,
	}
	return w, tsvLineKey{page: ints[1], block: ints[2], par: ints[3], line: ints[4]}, true
}

func parseVersionBanner(b []byte) string {
	first, _, _ := strings.Cut(strings.TrimSpace(string(b)), "\n")
	first = strings.TrimSpace(first)
	if v, ok := strings.CutPrefix(first, "tesseract "); ok {
		return strings.TrimSpace(v)
	}
	return first
}
