package config

import (
	"os"
	"sync"
)

type DBConfig struct {
	// Provider selects the storage backend: "postgres", "mongodb", "memory"
	// or empty (no persistent backend, degraded mode).
	Provider string

	// Postgres connection fields.
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// Mongo connection string. Also used by the content store.
	MongoURL string
}

var (
	dbConfig *DBConfig
	dbOnce   sync.Once
)

func LoadDBConfig() *DBConfig {
	dbOnce.Do(func() {
		dbConfig = &DBConfig{
			Provider: os.Getenv("DATABASE_PROVIDER"),
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  os.Getenv("DB_SSLMODE"),
			MongoURL: os.Getenv("MONGODB_URL"),
		}
	})
	return dbConfig
}
