package config

import (
	"log"
	"os"
	"sync"
)

type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		appConfig = &AppConfig{
			Name:    os.Getenv("APP_NAME"),
			Env:     env,
			Port:    os.Getenv("APP_PORT"),
			BaseURL: os.Getenv("APP_URL"),
		}
	})
	return appConfig
}

// IsProduction reports a production-like runtime: either APP_ENV=production
// or a managed deployment where only /tmp is writable.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production" || os.Getenv("DEPLOYMENT_ID") != ""
}
