package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/hanzalakhan/portfolio-backend/internal/model"
)

const (
	githubBaseURL  = "https://api.github.com"
	gistFilePrefix = "portfolio-data-"
)

// Gist mirrors to a GitHub Gist, adding a timestamped file per save so the
// gist history doubles as versioned storage.
type Gist struct {
	client *resty.Client
	gistID string
}

func NewGist(token, gistID string) *Gist {
	client := resty.New().
		SetBaseURL(githubBaseURL).
		SetTimeout(providerTimeout).
		SetHeader("Authorization", "token "+token).
		SetHeader("Accept", "application/vnd.github.v3+json")
	return &Gist{client: client, gistID: gistID}
}

// SetBaseURL points the provider at a different endpoint. Test hook.
func (g *Gist) SetBaseURL(url string) { g.client.SetBaseURL(url) }

func (g *Gist) Name() string { return "github" }

func (g *Gist) Save(ctx context.Context, payload []byte) error {
	// Re-indent so the gist file stays readable in the GitHub UI.
	var pretty json.RawMessage = payload
	if indented, err := json.MarshalIndent(pretty, "", "  "); err == nil {
		payload = indented
	}

	filename := fmt.Sprintf("%s%d.json", gistFilePrefix, time.Now().UnixMilli())
	body := map[string]any{
		"description": fmt.Sprintf("Portfolio data backup - %s", time.Now().UTC().Format(time.RFC3339)),
		"files": map[string]any{
			filename: map[string]string{"content": string(payload)},
		},
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Patch(fmt.Sprintf("/gists/%s", g.gistID))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("gist save failed: %s", resp.Status())
	}
	return nil
}

func (g *Gist) Load(ctx context.Context) (*model.PortfolioDocument, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/gists/%s", g.gistID))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gist load failed: %s", resp.Status())
	}

	// Filenames carry a millisecond timestamp, so the lexically greatest
	// portfolio-data-* file is the most recent save.
	type gistFile struct {
		name    string
		content string
	}
	var files []gistFile
	gjson.GetBytes(resp.Body(), "files").ForEach(func(_, file gjson.Result) bool {
		name := file.Get("filename").String()
		if len(name) >= len(gistFilePrefix) && name[:len(gistFilePrefix)] == gistFilePrefix {
			files = append(files, gistFile{name: name, content: file.Get("content").String()})
		}
		return true
	})
	if len(files) == 0 {
		return nil, nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name > files[j].name })

	return decodeDocument([]byte(files[0].content))
}

func (g *Gist) Probe(ctx context.Context) bool {
	resp, err := g.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/gists/%s", g.gistID))
	return err == nil && !resp.IsError()
}
