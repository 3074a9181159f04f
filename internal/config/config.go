package config

import (
	"os"
	"strconv"
)

// Population modes for walk and social event data. The two are independent:
// a group may mirror its walks from the national walks manager while
// authoring social events locally.
const (
	PopulationLocal        = "local"
	PopulationWalksManager = "walks-manager"
)

type Config struct {
	DatabaseType     string
	DatabaseURL      string
	Port             string
	BindIP           string
	AdminAPIKey      string
	WalkPopulation   string
	SocialPopulation string
	ManagerAPIURL    string
	ManagerAPIKey    string
	ManagerRateLimit int
	ReportTimezone   string
	Debug            bool
}

func Load() *Config {
	cfg := &Config{
		DatabaseType:     getEnv("DATABASE_TYPE", "sqlite"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		Port:             getEnv("PORT", "8080"),
		BindIP:           getEnv("IP", "0.0.0.0"),
		AdminAPIKey:      getEnv("ADMIN_API_KEY", ""),
		WalkPopulation:   getEnv("WALK_POPULATION", PopulationLocal),
		SocialPopulation: getEnv("SOCIAL_POPULATION", PopulationLocal),
		ManagerAPIURL:    getEnv("MANAGER_API_URL", ""),
		ManagerAPIKey:    getEnv("MANAGER_API_KEY", ""),
		ManagerRateLimit: getEnvInt("MANAGER_RATE_LIMIT", 10),
		ReportTimezone:   getEnv("REPORT_TIMEZONE", "Europe/London"),
		Debug:            getEnvBool("DEBUG", false),
	}

	// Set defaults for database
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "sqlite" {
			cfg.DatabaseURL = "walkhub.db"
		}
	}

	return cfg
}

// ManagerSourced reports whether either calculator needs the walks-manager
// mirror, which decides whether the fetcher must be configured at startup.
func (c *Config) ManagerSourced() bool {
	return c.WalkPopulation == PopulationWalksManager || c.SocialPopulation == PopulationWalksManager
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
