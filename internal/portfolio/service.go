// Package portfolio orchestrates the document's storage sinks. Reads walk a
// fixed fallback chain (database, cloud mirror, memory cache, temp file,
// bundled file) and return the first hit; writes fan out to every sink
// concurrently, with only the persistent backend allowed to fail the save.
package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/hanzalakhan/portfolio-backend/internal/cloud"
	"github.com/hanzalakhan/portfolio-backend/internal/model"
	"github.com/hanzalakhan/portfolio-backend/internal/storage"
)

// ErrLoadFailed surfaces only when every source in the chain is exhausted.
var ErrLoadFailed = errors.New("failed to load portfolio data")

const tempFileName = "portfolio-data.json"

// Service holds the process-wide document state: an explicitly constructed
// cache with a reset hook instead of scattered globals.
type Service struct {
	backend    storage.Backend // nil when no persistent backend configured
	mirror     *cloud.Mirror
	production bool
	dataPath   string // bundled default, always present
	tempPath   string // runtime-writable scratch copy

	mu     sync.RWMutex
	cached *model.PortfolioDocument
}

type Option func(*Service)

// WithPaths overrides the bundled and temp file locations. Test hook.
func WithPaths(dataPath, tempPath string) Option {
	return func(s *Service) {
		s.dataPath = dataPath
		s.tempPath = tempPath
	}
}

func New(backend storage.Backend, mirror *cloud.Mirror, production bool, opts ...Option) *Service {
	s := &Service{
		backend:    backend,
		mirror:     mirror,
		production: production,
		dataPath:   filepath.Join("data", "portfolio.json"),
		tempPath:   filepath.Join(os.TempDir(), tempFileName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Persistent reports whether saves are backed by a durable backend.
func (s *Service) Persistent() bool { return s.backend != nil }

// Backend exposes the configured backend for the admin surface; nil in
// degraded mode.
func (s *Service) Backend() storage.Backend { return s.backend }

// Get consults sources in strict priority order and returns the first
// success. Every path except the bundled default runs the normalization
// pass and populates the memory cache.
func (s *Service) Get(ctx context.Context) (*model.PortfolioDocument, error) {
	// Priority 1: persistent backend.
	if s.backend != nil {
		doc, err := s.backend.GetPortfolioData(ctx)
		if err != nil {
			log.Printf("database fetch failed, trying alternatives: %v", err)
		} else if doc != nil {
			normalized := Normalize(doc)
			s.setCache(normalized)
			return normalized, nil
		}
	}

	// Priority 2: cloud mirror.
	if s.mirror.Configured() {
		if doc := s.mirror.Load(ctx); doc != nil {
			normalized := Normalize(doc)
			s.setCache(normalized)
			return normalized, nil
		}
	}

	// Priority 3: memory cache, production only.
	if s.production {
		if cached := s.getCache(); cached != nil {
			return cached, nil
		}
	}

	// Priority 4: temp scratch file.
	if doc, err := readDocumentFile(s.tempPath); err == nil {
		normalized := Normalize(doc)
		if s.production {
			s.setCache(normalized)
		}
		return normalized, nil
	}

	// Priority 5: bundled default.
	doc, err := readDocumentFile(s.dataPath)
	if err != nil {
		log.Printf("error reading portfolio data: %v", err)
		return nil, ErrLoadFailed
	}
	return doc, nil
}

// Save validates nothing: callers pass already-sanitized documents. The
// memory cache is set immediately so reads in this process see the new
// document even while the durable sinks are in flight.
func (s *Service) Save(ctx context.Context, doc *model.PortfolioDocument, adminEmail string) error {
	if adminEmail == "" {
		adminEmail = "unknown@admin.com"
	}

	s.setCache(doc)

	var (
		wg          sync.WaitGroup
		criticalErr error
	)

	// Persistent backend write: the one sink whose failure fails the save.
	if s.backend != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.backend.SavePortfolioData(ctx, doc, adminEmail); err != nil {
				log.Printf("database save failed: %v", err)
				criticalErr = err
				return
			}
			log.Println("data saved to persistent database")
		}()
	}

	if s.mirror.Configured() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.mirror.Save(ctx, doc, adminEmail)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if s.production {
			// Scratch copy for fast same-process reads.
			if err := writeDocumentFile(s.tempPath, doc); err != nil {
				log.Printf("temp file save failed: %v", err)
			}
		} else {
			if err := writeDocumentFile(s.dataPath, doc); err != nil {
				log.Printf("local file save failed: %v", err)
			}
		}
	}()

	wg.Wait()

	if criticalErr != nil {
		return fmt.Errorf("failed to save portfolio data to persistent storage: %w", criticalErr)
	}
	return nil
}

func (s *Service) setCache(doc *model.PortfolioDocument) {
	s.mu.Lock()
	s.cached = doc
	s.mu.Unlock()
}

func (s *Service) getCache() *model.PortfolioDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached
}

// ResetCache clears the in-memory document. Test hook.
func (s *Service) ResetCache() { s.setCache(nil) }

var malformedImageRe = regexp.MustCompile(`^https:/{2,}`)

// Normalize repairs a known malformed profile-image pattern produced by an
// older sanitizer: https:///profile.jpg becomes /profile.jpg. Idempotent.
func Normalize(doc *model.PortfolioDocument) *model.PortfolioDocument {
	img := doc.Personal.Image
	if strings.HasPrefix(img, "https:///") {
		copied := *doc
		copied.Personal.Image = malformedImageRe.ReplaceAllString(img, "/")
		return &copied
	}
	return doc
}

func readDocumentFile(path string) (*model.PortfolioDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc model.PortfolioDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func writeDocumentFile(path string, doc *model.PortfolioDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
