package cloud

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hanzalakhan/portfolio-backend/internal/model"
)

const pastebinURL = "https://pastebin.com/api/api_post.php"

// Pastebin is a write-only fallback: each save becomes a private paste that
// expires after a month. There is no read path.
type Pastebin struct {
	client *resty.Client
	apiKey string
	url    string
}

func NewPastebin(apiKey string) *Pastebin {
	return &Pastebin{
		client: resty.New().SetTimeout(providerTimeout),
		apiKey: apiKey,
		url:    pastebinURL,
	}
}

// SetBaseURL points the provider at a different endpoint. Test hook.
func (p *Pastebin) SetBaseURL(url string) { p.url = url }

func (p *Pastebin) Name() string { return "pastebin" }

func (p *Pastebin) Save(ctx context.Context, payload []byte) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"api_dev_key":           p.apiKey,
			"api_option":            "paste",
			"api_paste_code":        string(payload),
			"api_paste_name":        fmt.Sprintf("Portfolio Backup - %s", time.Now().UTC().Format(time.RFC3339)),
			"api_paste_expire_date": "1M",
			"api_paste_private":     "1",
		}).
		Post(p.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("pastebin save failed: %s", resp.Status())
	}
	if strings.Contains(resp.String(), "Bad API request") {
		return fmt.Errorf("pastebin API error: %s", resp.String())
	}
	return nil
}

// Load is unsupported; pastes are retained for disaster recovery by hand.
func (p *Pastebin) Load(ctx context.Context) (*model.PortfolioDocument, error) {
	return nil, nil
}

// Probe only confirms the key is present; pastebin has no cheap read probe.
func (p *Pastebin) Probe(ctx context.Context) bool {
	return p.apiKey != ""
}
