package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/emilyparentdata/StagingTools/internal/app"
	"github.com/emilyparentdata/StagingTools/internal/config"
	"github.com/emilyparentdata/StagingTools/internal/domain"
	"github.com/emilyparentdata/StagingTools/internal/logging"
	"github.com/emilyparentdata/StagingTools/internal/review"
	"github.com/emilyparentdata/StagingTools/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	var (
		templateName = flag.String("template", "standard", "layout variant: standard, fertility-article, fertility-qa, marketing")
		filePath     = flag.String("file", "", "path to an uploaded word-processor document")
		docURL       = flag.String("doc", "", "shared online document link or ID")
		articleURL   = flag.String("url", "", "published article URL")
		articleURL2  = flag.String("url2", "", "second published article URL (fertility-qa only)")
		outDir       = flag.String("out", ".", "directory for delivery.html and preview.html")
		relatedCount = flag.Int("related", 2, "related-reading cards to suggest (standard only)")
		introName    = flag.String("intro", "", "marketing intro option name")
		planName     = flag.String("plan", "yearly", "marketing pricing plan name")
		refresh      = flag.Bool("refresh-index", false, "rebuild the article index before staging")
	)
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)
	application := app.New(cfg, logger)

	if err := run(context.Background(), application, cfg, logger, runOptions{
		template:     *templateName,
		filePath:     *filePath,
		docURL:       *docURL,
		articleURL:   *articleURL,
		articleURL2:  *articleURL2,
		outDir:       *outDir,
		relatedCount: *relatedCount,
		introName:    *introName,
		planName:     *planName,
		refresh:      *refresh,
	}); err != nil {
		logger.Error("staging failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	template     string
	filePath     string
	docURL       string
	articleURL   string
	articleURL2  string
	outDir       string
	relatedCount int
	introName    string
	planName     string
	refresh      bool
}

func run(ctx context.Context, application *app.Application, cfg config.Config, logger *slog.Logger, opts runOptions) error {
	template, err := domain.ParseTemplate(opts.template)
	if err != nil {
		return err
	}
	service := application.Service

	if opts.refresh {
		if err := service.RefreshIndex(ctx); err != nil {
			return fmt.Errorf("refresh index: %w", err)
		}
	}
	if info, ok := service.IndexInfo(); ok {
		logger.Info("article index", "articles", info.Articles, "builtAt", info.BuiltAt, "stale", info.Stale)
	}

	var session *review.Session
	if template == domain.TemplateQA {
		if opts.articleURL == "" || opts.articleURL2 == "" {
			return fmt.Errorf("fertility-qa needs -url and -url2")
		}
		first, err := service.FetchSource(ctx, domain.OriginPublished, opts.articleURL, nil)
		if err != nil {
			return err
		}
		second, err := service.FetchSource(ctx, domain.OriginPublished, opts.articleURL2, nil)
		if err != nil {
			return err
		}
		session, err = service.ExtractPair(ctx, first, second)
		if err != nil {
			return err
		}
	} else {
		doc, err := fetchSource(ctx, application, opts)
		if err != nil {
			return err
		}
		session, err = service.Extract(ctx, doc, template)
		if err != nil {
			return err
		}
	}
	defer service.Close(session.ID)

	if template == domain.TemplateMarketing {
		if err := applyMarketingDefaults(service, session.ID, cfg, opts); err != nil {
			return err
		}
	}

	var fillIns []domain.RelatedArticle
	if template == domain.TemplateStandard && len(session.Related()) == 0 && opts.relatedCount > 0 {
		candidates, err := service.Recommend(ctx, session.ID, opts.relatedCount)
		if err != nil {
			return fmt.Errorf("recommend: %w", err)
		}
		for _, c := range candidates {
			fillIns = append(fillIns, domain.RelatedArticle{
				Title:       c.Title,
				URL:         c.URL,
				Description: c.Tagline,
				ImageAlt:    c.Title,
			})
		}
	}

	output, err := service.Generate(session.ID, fillIns)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(opts.outDir, "delivery.html"), []byte(output.Delivery), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(opts.outDir, "preview.html"), []byte(output.Preview), 0o644)
}

func fetchSource(ctx context.Context, application *app.Application, opts runOptions) (*domain.Document, error) {
	switch {
	case opts.filePath != "":
		data, err := os.ReadFile(opts.filePath)
		if err != nil {
			return nil, err
		}
		return application.Service.FetchSource(ctx, domain.OriginUpload, filepath.Base(opts.filePath), data)
	case opts.docURL != "":
		return application.Service.FetchSource(ctx, domain.OriginSharedDoc, opts.docURL, nil)
	case opts.articleURL != "":
		return application.Service.FetchSource(ctx, domain.OriginPublished, opts.articleURL, nil)
	default:
		return nil, fmt.Errorf("provide -file, -doc, or -url")
	}
}

// applyMarketingDefaults fills the marketing review fields from config: the
// chosen pricing plan, the intro option text, and the discount link.
func applyMarketingDefaults(service *usecase.Service, sessionID string, cfg config.Config, opts runOptions) error {
	for _, plan := range cfg.Marketing.Plans {
		if plan.Name != opts.planName {
			continue
		}
		if err := service.Edit(sessionID, "plan_name", plan.Name); err != nil {
			return err
		}
		if err := service.Edit(sessionID, "list_price", plan.ListPrice); err != nil {
			return err
		}
		break
	}
	if err := service.Edit(sessionID, "discount_url", cfg.Marketing.DefaultDiscountURL); err != nil {
		return err
	}
	if opts.introName == "" {
		return nil
	}
	options, err := service.IntroOptions()
	if err != nil {
		return err
	}
	for _, option := range options {
		if option.Name == opts.introName {
			return service.Edit(sessionID, "intro_option_text", option.Text)
		}
	}
	return fmt.Errorf("unknown intro option %q", opts.introName)
}
