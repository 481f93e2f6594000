package config

import (
	"os"
	"sync"
)

// CloudConfig holds credentials for the best-effort mirror providers. Any
// provider with missing credentials is simply not configured.
type CloudConfig struct {
	JSONBinAPIKey string
	JSONBinBinID  string

	GithubToken  string
	GithubGistID string

	PastebinAPIKey string

	DeploymentID string
}

var (
	cloudConfig *CloudConfig
	cloudOnce   sync.Once
)

func LoadCloudConfig() *CloudConfig {
	cloudOnce.Do(func() {
		deploymentID := os.Getenv("DEPLOYMENT_ID")
		if deploymentID == "" {
			deploymentID = "local"
		}
		cloudConfig = &CloudConfig{
			JSONBinAPIKey:  os.Getenv("JSONBIN_API_KEY"),
			JSONBinBinID:   os.Getenv("JSONBIN_BIN_ID"),
			GithubToken:    os.Getenv("GITHUB_TOKEN"),
			GithubGistID:   os.Getenv("GITHUB_GIST_ID"),
			PastebinAPIKey: os.Getenv("PASTEBIN_API_KEY"),
			DeploymentID:   deploymentID,
		}
	})
	return cloudConfig
}
