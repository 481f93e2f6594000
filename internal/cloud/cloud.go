// Package cloud mirrors the portfolio document to independent external
// services: JSONBin (primary blob store), a GitHub Gist (versioned backup)
// and Pastebin (write-only fallback). Mirroring is best-effort end to end; a
// provider failure never fails a save, and loads walk providers in priority
// order until one yields data.
package cloud

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/hanzalakhan/portfolio-backend/internal/config"
	"github.com/hanzalakhan/portfolio-backend/internal/model"
)

const providerTimeout = 10 * time.Second

// Metadata wraps every mirrored document so a restore can tell where a copy
// came from and when.
type Metadata struct {
	SavedAt      string `json:"savedAt"`
	Version      int64  `json:"version"`
	AdminEmail   string `json:"adminEmail,omitempty"`
	Provider     string `json:"provider"`
	DeploymentID string `json:"deploymentId,omitempty"`
}

type envelope struct {
	PortfolioData *model.PortfolioDocument `json:"portfolioData"`
	Metadata      Metadata                 `json:"metadata"`
}

// Provider is one external mirror target. Save takes the marshalled
// envelope; Load returns (nil, nil) for providers that cannot read back.
type Provider interface {
	Name() string
	Save(ctx context.Context, payload []byte) error
	Load(ctx context.Context) (*model.PortfolioDocument, error)
	Probe(ctx context.Context) bool
}

// Mirror fans writes out to every provider and reads from the first one
// that answers. Provider order is priority order for loads.
type Mirror struct {
	providers    []Provider
	deploymentID string
}

func NewMirror(deploymentID string, providers ...Provider) *Mirror {
	return &Mirror{providers: providers, deploymentID: deploymentID}
}

// NewMirrorFromConfig assembles providers that have credentials configured.
func NewMirrorFromConfig(cfg *config.CloudConfig) *Mirror {
	var providers []Provider
	if cfg.JSONBinAPIKey != "" && cfg.JSONBinBinID != "" {
		providers = append(providers, NewJSONBin(cfg.JSONBinAPIKey, cfg.JSONBinBinID))
	}
	if cfg.GithubToken != "" && cfg.GithubGistID != "" {
		providers = append(providers, NewGist(cfg.GithubToken, cfg.GithubGistID))
	}
	if cfg.PastebinAPIKey != "" {
		providers = append(providers, NewPastebin(cfg.PastebinAPIKey))
	}
	return NewMirror(cfg.DeploymentID, providers...)
}

// Save writes the document to every provider concurrently and waits for all
// of them to settle. Individual failures are logged, never returned: cloud
// mirroring must not block or fail the primary save.
func (m *Mirror) Save(ctx context.Context, doc *model.PortfolioDocument, adminEmail string) {
	if len(m.providers) == 0 {
		return
	}

	payload, err := json.Marshal(envelope{
		PortfolioData: doc,
		Metadata: Metadata{
			SavedAt:      time.Now().UTC().Format(time.RFC3339),
			Version:      time.Now().UnixMilli(),
			AdminEmail:   adminEmail,
			Provider:     "multiple",
			DeploymentID: m.deploymentID,
		},
	})
	if err != nil {
		log.Printf("cloud save skipped, marshal failed: %v", err)
		return
	}

	var wg sync.WaitGroup
	for _, p := range m.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, providerTimeout)
			defer cancel()
			if err := p.Save(pctx, payload); err != nil {
				log.Printf("cloud save to %s failed: %v", p.Name(), err)
				return
			}
			log.Printf("data saved to %s", p.Name())
		}(p)
	}
	wg.Wait()
}

// Load tries providers in priority order and returns the first document
// that loads. Returns nil when every provider fails or none are configured;
// never an error.
func (m *Mirror) Load(ctx context.Context) *model.PortfolioDocument {
	for _, p := range m.providers {
		pctx, cancel := context.WithTimeout(ctx, providerTimeout)
		doc, err := p.Load(pctx)
		cancel()
		if err != nil {
			log.Printf("cloud load from %s failed: %v", p.Name(), err)
			continue
		}
		if doc != nil {
			log.Printf("data loaded from %s", p.Name())
			return doc
		}
	}
	return nil
}

// TestConnectivity probes each provider read-only and reports availability
// per provider. Diagnostics only; saves and loads always try every
// configured provider regardless of this result.
func (m *Mirror) TestConnectivity(ctx context.Context) map[string]bool {
	results := make(map[string]bool, len(m.providers))
	for _, p := range m.providers {
		pctx, cancel := context.WithTimeout(ctx, providerTimeout)
		results[p.Name()] = p.Probe(pctx)
		cancel()
	}
	return results
}

// Configured reports whether any mirror target exists.
func (m *Mirror) Configured() bool {
	return m != nil && len(m.providers) > 0
}

// decodeDocument accepts both payload shapes: the current
// {portfolioData, metadata} envelope and the legacy raw document.
func decodeDocument(raw []byte) (*model.PortfolioDocument, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.PortfolioData != nil {
		return env.PortfolioData, nil
	}
	var doc model.PortfolioDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
