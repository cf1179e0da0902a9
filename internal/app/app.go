// Package app wires configuration into the staging workflow components.
package app

import (
	"log/slog"
	"strings"

	"github.com/emilyparentdata/StagingTools/internal/assemble"
	"github.com/emilyparentdata/StagingTools/internal/config"
	"github.com/emilyparentdata/StagingTools/internal/extract"
	"github.com/emilyparentdata/StagingTools/internal/infrastructure/gdoc"
	"github.com/emilyparentdata/StagingTools/internal/infrastructure/llm"
	"github.com/emilyparentdata/StagingTools/internal/infrastructure/wordpress"
	"github.com/emilyparentdata/StagingTools/internal/logging"
	"github.com/emilyparentdata/StagingTools/internal/recommend"
	"github.com/emilyparentdata/StagingTools/internal/review"
	"github.com/emilyparentdata/StagingTools/internal/source"
	"github.com/emilyparentdata/StagingTools/internal/usecase"
)

// Application holds the wired staging service.
type Application struct {
	cfg     config.Config
	Service *usecase.Service
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	cms := wordpress.NewClient(
		cfg.CMS.BaseURL,
		siteURL(cfg.CMS.BaseURL),
		cfg.CMS.Username,
		cfg.CMS.AppPassword,
		cfg.CMS.PageSize,
		baseLogger.With("component", "cms"),
	)
	exporter := gdoc.NewExporter(cfg.SharedDoc.ExportURL, baseLogger.With("component", "gdoc"))
	adapter := source.NewAdapter(exporter, cms, baseLogger.With("component", "source"))

	oracle := llm.NewClient(
		cfg.Anthropic.APIKey,
		cfg.Anthropic.Model,
		cfg.Anthropic.MaxTokens,
		baseLogger.With("component", "oracle"),
	)
	extractor := extract.NewOrchestrator(oracle, cfg.Authoring.DefaultAuthorURL, baseLogger.With("component", "extract"))

	cache := recommend.NewIndexCache(cms, baseLogger.With("component", "index"))
	recommender := recommend.New(cache)

	engine := assemble.New(cfg.Authoring.SiteName, nil)

	service := usecase.New(
		adapter,
		extractor,
		review.NewManager(),
		recommender,
		cache,
		engine,
		cfg.Marketing.IntroOptionsCSV,
		baseLogger.With("component", "staging"),
	)
	return &Application{cfg: cfg, Service: service}
}

// siteURL derives the public site root from the REST API base URL.
func siteURL(baseURL string) string {
	if i := strings.Index(baseURL, "/wp-json"); i > 0 {
		return baseURL[:i]
	}
	return strings.TrimRight(baseURL, "/")
}
