package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "STAGING_CONFIG"
	anthropicKeyEnv    = "ANTHROPIC_API_KEY"
	anthropicModelEnv  = "ANTHROPIC_MODEL"
	cmsBaseURLEnv      = "CMS_BASE_URL"
	cmsUsernameEnv     = "WP_APP_USERNAME"
	cmsAppPasswordEnv  = "WP_APP_PASSWORD"
	docExportURLEnv    = "DOC_EXPORT_URL"
	introOptionsCSVEnv = "MARKETING_INTRO_CSV"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	CMS       CMSConfig       `yaml:"cms"`
	SharedDoc SharedDocConfig `yaml:"sharedDoc"`
	Marketing MarketingConfig `yaml:"marketing"`
	Authoring AuthoringConfig `yaml:"authoring"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AnthropicConfig defines how to contact the extraction oracle.
type AnthropicConfig struct {
	APIKey    string `yaml:"apiKey"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"maxTokens"`
}

// CMSConfig describes the content-management REST API and its credentials.
// Username/AppPassword are application-level credentials; without them the
// API returns only the public teaser for subscriber-only articles.
type CMSConfig struct {
	BaseURL     string `yaml:"baseUrl"`
	Username    string `yaml:"username"`
	AppPassword string `yaml:"appPassword"`
	PageSize    int    `yaml:"pageSize"`
}

// SharedDocConfig describes the shared-document export endpoint. ExportURL
// must contain a %s placeholder for the document ID.
type SharedDocConfig struct {
	ExportURL string `yaml:"exportUrl"`
}

// PricingPlan is one selectable subscription plan for the marketing layout.
type PricingPlan struct {
	Name      string `yaml:"name"`
	ListPrice string `yaml:"listPrice"`
}

// MarketingConfig groups marketing-layout assets.
type MarketingConfig struct {
	IntroOptionsCSV    string        `yaml:"introOptionsCsv"`
	Plans              []PricingPlan `yaml:"plans"`
	DefaultDiscountURL string        `yaml:"defaultDiscountUrl"`
}

// AuthoringConfig carries site-specific authoring defaults.
type AuthoringConfig struct {
	DefaultAuthorURL string `yaml:"defaultAuthorUrl"`
	SiteName         string `yaml:"siteName"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(anthropicKeyEnv); v != "" {
		c.Anthropic.APIKey = v
	}
	if v := os.Getenv(anthropicModelEnv); v != "" {
		c.Anthropic.Model = v
	}
	if v := os.Getenv(cmsBaseURLEnv); v != "" {
		c.CMS.BaseURL = v
	}
	if v := os.Getenv(cmsUsernameEnv); v != "" {
		c.CMS.Username = v
	}
	if v := os.Getenv(cmsAppPasswordEnv); v != "" {
		c.CMS.AppPassword = v
	}
	if v := os.Getenv(docExportURLEnv); v != "" {
		c.SharedDoc.ExportURL = v
	}
	if v := os.Getenv(introOptionsCSVEnv); v != "" {
		c.Marketing.IntroOptionsCSV = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Anthropic.APIKey != "" {
		base.Anthropic.APIKey = override.Anthropic.APIKey
	}
	if override.Anthropic.Model != "" {
		base.Anthropic.Model = override.Anthropic.Model
	}
	if override.Anthropic.MaxTokens > 0 {
		base.Anthropic.MaxTokens = override.Anthropic.MaxTokens
	}

	if override.CMS.BaseURL != "" {
		base.CMS.BaseURL = override.CMS.BaseURL
	}
	if override.CMS.Username != "" {
		base.CMS.Username = override.CMS.Username
	}
	if override.CMS.AppPassword != "" {
		base.CMS.AppPassword = override.CMS.AppPassword
	}
	if override.CMS.PageSize > 0 {
		base.CMS.PageSize = override.CMS.PageSize
	}

	if override.SharedDoc.ExportURL != "" {
		base.SharedDoc.ExportURL = override.SharedDoc.ExportURL
	}

	if override.Marketing.IntroOptionsCSV != "" {
		base.Marketing.IntroOptionsCSV = override.Marketing.IntroOptionsCSV
	}
	if len(override.Marketing.Plans) > 0 {
		base.Marketing.Plans = override.Marketing.Plans
	}
	if override.Marketing.DefaultDiscountURL != "" {
		base.Marketing.DefaultDiscountURL = override.Marketing.DefaultDiscountURL
	}

	if override.Authoring.DefaultAuthorURL != "" {
		base.Authoring.DefaultAuthorURL = override.Authoring.DefaultAuthorURL
	}
	if override.Authoring.SiteName != "" {
		base.Authoring.SiteName = override.Authoring.SiteName
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-5",
			MaxTokens: 8000,
		},
		CMS: CMSConfig{
			BaseURL:  "https://parentdata.org/wp-json/wp/v2",
			PageSize: 100,
		},
		SharedDoc: SharedDocConfig{
			ExportURL: "https://docs.google.com/document/d/%s/export?format=docx",
		},
		Marketing: MarketingConfig{
			Plans: []PricingPlan{
				{Name: "yearly", ListPrice: "$120"},
				{Name: "monthly", ListPrice: "$12"},
			},
			DefaultDiscountURL: "https://parentdata.org/register/plus-yearly/?coupon=allaccess30",
		},
		Authoring: AuthoringConfig{
			DefaultAuthorURL: "https://parentdata.org/author/eoster/",
			SiteName:         "ParentData",
		},
	}
}
