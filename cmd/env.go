package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/agent"
	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/llm"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/scrape"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/pkg/jina"
	"github.com/sells-group/leadgen-cli/pkg/notion"
	sfpkg "github.com/sells-group/leadgen-cli/pkg/salesforce"
)

// leadEnv holds the store and the pipeline needed by the run and serve
// commands.
type leadEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *leadEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// exportTargets selects where finished records go besides the ledger.
type exportTargets struct {
	Notion     bool
	Salesforce bool
}

// initEnv validates config, opens the store, builds the generator, the
// scrape chain, the agents and the exporters, and wires the Pipeline.
// Callers should defer env.Close().
func initEnv(ctx context.Context, targets exportTargets) (*leadEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	exporter, err := buildExporter(cfg, targets)
	if err != nil {
		return nil, err
	}

	gen, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	chain, search := buildScraper(cfg)
	researcher := agent.NewResearcher(cfg, gen, chain, search)
	roster := agent.NewRoster(cfg, gen, chain)

	zap.L().Info("leadgen environment ready",
		zap.String("provider", gen.Name()),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("search", search != nil),
		zap.String("exporter", exporter.Name()),
	)

	return &leadEnv{
		Store:    st,
		Pipeline: pipeline.New(cfg, researcher, roster, st, exporter),
	}, nil
}

// buildScraper returns the local scraper, with Jina Reader as fallback and
// Jina Search for grounding when a Jina key is configured. search is nil
// without a key.
func buildScraper(c *config.Config) (scrape.Scraper, jina.Client) {
	local := scrape.NewLocalScraper(c.Scrape)
	if c.Jina.Key == "" {
		return scrape.NewChain(local), nil
	}

	opts := []jina.Option{jina.WithBaseURL(c.Jina.BaseURL)}
	if c.Jina.SearchBaseURL != "" {
		opts = append(opts, jina.WithSearchBaseURL(c.Jina.SearchBaseURL))
	}
	client := jina.NewClient(c.Jina.Key, opts...)
	return scrape.NewChain(local, scrape.NewJinaScraper(client, c.Scrape.MaxTextChars)), client
}

// buildExporter returns the tabular file exporter plus the requested CRM
// exporters.
func buildExporter(c *config.Config, targets exportTargets) (export.Exporter, error) {
	var exporters export.Multi
	switch c.Output.Format {
	case "csv":
		exporters = append(exporters, export.NewCSV(c.Output.Path))
	case "xlsx":
		exporters = append(exporters, export.NewXLSX(c.Output.Path))
	default:
		return nil, eris.Errorf("unknown output format %q", c.Output.Format)
	}

	if targets.Notion {
		if c.Notion.Token == "" || c.Notion.LeadDB == "" {
			return nil, eris.New("notion export requires notion.token and notion.lead_db (LEADGEN_NOTION_TOKEN, LEADGEN_NOTION_LEAD_DB)")
		}
		var opts []notion.ClientOption
		if c.Retry.MaxAttempts > 0 {
			opts = append(opts, notion.WithRetry(c.Retry.MaxAttempts))
		}
		exporters = append(exporters, export.NewNotion(notion.NewClient(c.Notion.Token, opts...), c.Notion.LeadDB))
	}

	if targets.Salesforce {
		sf, err := initSalesforce(c.Salesforce)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, export.NewSalesforce(sf, c.Salesforce.LeadSource))
	}

	return exporters, nil
}

func initSalesforce(c config.SalesforceConfig) (sfpkg.Client, error) {
	if c.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (LEADGEN_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(c.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := sfpkg.Connect(c.LoginURL, c.Username, c.ClientID, string(pemData))
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}
	return sf, nil
}
