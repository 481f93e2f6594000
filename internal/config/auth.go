package config

import (
	"log"
	"os"
	"strings"
	"sync"
)

type AuthConfig struct {
	// AuthorizedEmails is the admin allow-list, comma-separated in
	// AUTHORIZED_ADMIN_EMAILS with a hardcoded fallback pair.
	AuthorizedEmails []string
	JWTSecret        string
}

var (
	authConfig *AuthConfig
	authOnce   sync.Once
)

var defaultAdminEmails = []string{
	"hanzalakhan0913@gmail.com",
	"hanzalakhan0912@gmail.com",
}

func LoadAuthConfig() *AuthConfig {
	authOnce.Do(func() {
		emails := defaultAdminEmails
		if raw := os.Getenv("AUTHORIZED_ADMIN_EMAILS"); raw != "" {
			emails = nil
			for _, e := range strings.Split(raw, ",") {
				if e = strings.TrimSpace(e); e != "" {
					emails = append(emails, e)
				}
			}
		} else {
			log.Println("Warning: AUTHORIZED_ADMIN_EMAILS not set, using default emails")
		}
		authConfig = &AuthConfig{
			AuthorizedEmails: emails,
			JWTSecret:        os.Getenv("ADMIN_JWT_SECRET"),
		}
	})
	return authConfig
}

func (c *AuthConfig) IsAuthorized(email string) bool {
	for _, e := range c.AuthorizedEmails {
		if e == email {
			return true
		}
	}
	return false
}
