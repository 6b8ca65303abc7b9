package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultAPIBaseURL is the marketplace backend the onboarding service proxies.
	DefaultAPIBaseURL = "https://api.marketplace.example.com/api/v1"

	// DefaultDatabaseURL is empty; without it sessions live in memory only.
	DefaultDatabaseURL = ""

	// MaxDocumentBytes is the upload size limit for a single verification document.
	MaxDocumentBytes = 5 << 20

	// MinSellerAge is the minimum age accepted at the personal-info step.
	MinSellerAge = 18

	// MinStoreNameLength is the minimum length of a store name.
	MinStoreNameLength = 3

	// PendingSellerIDKey is the client-state key holding a seller id across the
	// external checkout redirect.
	PendingSellerIDKey = "pendingSellerId"

	// DebounceWindow is the quiet window for store-name availability checks.
	DebounceWindow = 400 * time.Millisecond

	// DefaultRateLimit is the default requests per minute per IP address.
	DefaultRateLimit = 100

	// OnboardingTopic is the Kafka topic for seller onboarding events.
	OnboardingTopic = "seller.onboarding"
)

// File holds optional settings loaded from a TOML config file. Flags and
// environment variables take precedence over file values.
type File struct {
	Port         string `toml:"port"`
	DatabaseURL  string `toml:"database_url"`
	APIBaseURL   string `toml:"api_base_url"`
	KafkaBrokers string `toml:"kafka_brokers"`
	LogLevel     string `toml:"log_level"`
	RateLimit    int    `toml:"rate_limit"`
}

// Load reads a TOML config file from path.
func Load(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return &f, nil
}
