package cloud

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/hanzalakhan/portfolio-backend/internal/model"
)

const jsonbinBaseURL = "https://api.jsonbin.io/v3"

// JSONBin is the primary mirror: a single bin overwritten on every save,
// versioning disabled.
type JSONBin struct {
	client *resty.Client
	binID  string
}

func NewJSONBin(apiKey, binID string) *JSONBin {
	client := resty.New().
		SetBaseURL(jsonbinBaseURL).
		SetTimeout(providerTimeout).
		SetHeader("X-Master-Key", apiKey)
	return &JSONBin{client: client, binID: binID}
}

// SetBaseURL points the provider at a different endpoint. Test hook.
func (j *JSONBin) SetBaseURL(url string) { j.client.SetBaseURL(url) }

func (j *JSONBin) Name() string { return "jsonbin" }

func (j *JSONBin) Save(ctx context.Context, payload []byte) error {
	resp, err := j.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Bin-Versioning", "false").
		SetBody(payload).
		Put(fmt.Sprintf("/b/%s", j.binID))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("jsonbin save failed: %s", resp.Status())
	}
	return nil
}

func (j *JSONBin) Load(ctx context.Context) (*model.PortfolioDocument, error) {
	resp, err := j.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/b/%s/latest", j.binID))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("jsonbin load failed: %s", resp.Status())
	}

	record := gjson.GetBytes(resp.Body(), "record")
	if !record.Exists() {
		return nil, nil
	}
	return decodeDocument([]byte(record.Raw))
}

func (j *JSONBin) Probe(ctx context.Context) bool {
	doc, err := j.Load(ctx)
	return err == nil && doc != nil
}
