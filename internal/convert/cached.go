package convert

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/docconv/internal/common"
)

// ResultCache is the persistence a CachedService needs. *cache.Store satisfies it.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// CachedService serves repeat conversions of identical input from a cache.
// Only successful results are stored; cache errors are logged and ignored.
type CachedService struct {
	next   Service
	cache  ResultCache
	logger *slog.Logger
}

func NewCachedService(next Service, cache ResultCache, logger *slog.Logger) *CachedService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedService{next: next, cache: cache, logger: logger}
}

type cachedEntry struct {
	Result    *ConversionResult `json:"result"`
	PageTexts []PageResult      `json:"page_texts,omitempty"`
}

func (s *CachedService) Convert(ctx context.Context, mode Mode, path string, opts Options) *ConversionResult {
	logger := common.LoggerFromContext(ctx, s.logger)

	key, err := CacheKey(path, mode, opts)
	if err != nil {
		logger.Warn("cache key unavailable", "path", path, "error", err)
		return s.next.Convert(ctx, mode, path, opts)
	}

	if payload, found, err := s.cache.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "error", err)
	} else if found {
		var e cachedEntry
		if err := json.Unmarshal(payload, &e); err == nil && e.Result != nil {
			logger.Debug("cache hit", "path", path, "mode", string(mode))
			e.Result.PageTexts = e.PageTexts
			return e.Result
		}
		logger.Warn("discarding unreadable cache entry", "key", key)
	}

	res := s.next.Convert(ctx, mode, path, opts)
	if !res.Success {
		return res
	}
	payload, err := json.Marshal(cachedEntry{Result: res, PageTexts: res.PageTexts})
	if err != nil {
		logger.Warn("cache encode failed", "error", err)
		return res
	}
	if err := s.cache.Put(ctx, key, payload); err != nil {
		logger.Warn("cache write failed", "error", err)
	}
	return res
}

// CacheKey is sha256(file) ":" mode ":" sha256(options JSON).
func CacheKey(path string, mode Mode, opts Options) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}
	optsSum := sha256.Sum256(optsJSON)
	return hex.EncodeToString(h.Sum(nil)) + ":" + string(mode) + ":" + hex.EncodeToString(optsSum[:]), nil
}
