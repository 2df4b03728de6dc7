package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/advert-optimiser/internal/config"
	"github.com/jonathan/advert-optimiser/internal/db"
	"github.com/jonathan/advert-optimiser/internal/ingestion"
	"github.com/jonathan/advert-optimiser/internal/llm"
	"github.com/jonathan/advert-optimiser/internal/observability"
	"github.com/jonathan/advert-optimiser/internal/parsing"
	"github.com/jonathan/advert-optimiser/internal/rewriting"
	"github.com/jonathan/advert-optimiser/internal/session"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	configPath  string
	provider    string
	apiKey      string
	databaseURL string
	useBrowser  bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "advert_agent",
		Short:         "Job advert extraction, completion and optimisation",
		Long:          "advert_agent turns a UK job advert (document, pasted text or web page) into a structured record, asks for the missing fields and suggests clearer wording for the long-text fields.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to a JSON config file")
	pf.StringVar(&flags.provider, "provider", "", "LLM provider: gemini or openai (overrides LLM_PROVIDER)")
	pf.StringVar(&flags.apiKey, "api-key", "", "API key for the provider (overrides GEMINI_API_KEY / OPENAI_API_KEY)")
	pf.StringVar(&flags.databaseURL, "db-url", "", "PostgreSQL URL for the page cache and published adverts (overrides DATABASE_URL)")
	pf.BoolVar(&flags.useBrowser, "browser", false, "Render short web pages in a headless browser")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Print detailed progress")

	root.AddCommand(
		newExtractCmd(flags),
		newCompleteCmd(flags),
		newOptimiseCmd(flags),
		newValidateCmd(),
		newInterviewCmd(flags),
		newServeCmd(flags),
	)
	return root
}

// app holds the services a command needs, built from config, env and flags
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	client  llm.Client
	db      *db.DB
	printer *observability.Printer
}

// loadConfig merges the config file, environment and flags; flags win
func (f *globalFlags) loadConfig() (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if f.provider != "" {
		cfg.Provider = f.provider
	}
	if f.apiKey != "" {
		if cfg.Provider == string(llm.ProviderOpenAI) {
			cfg.OpenAIAPIKey = f.apiKey
		} else {
			cfg.GeminiAPIKey = f.apiKey
		}
	}
	if f.databaseURL != "" {
		cfg.DatabaseURL = f.databaseURL
	}
	cfg.UseBrowser = cfg.UseBrowser || f.useBrowser
	cfg.Verbose = cfg.Verbose || f.verbose

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newApp builds the logger, LLM client and optional database connection
func (f *globalFlags) newApp(cmd *cobra.Command, needLLM bool) (*app, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		printer: observability.NewPrinter(cmd.ErrOrStderr()),
	}

	if needLLM {
		llmCfg, err := cfg.LLMConfig()
		if err != nil {
			return nil, err
		}
		apiKey := cfg.APIKey()
		if apiKey == "" {
			return nil, fmt.Errorf("API key is required (set GEMINI_API_KEY or OPENAI_API_KEY, or use --api-key): %w", llm.ErrMissingAPIKey)
		}
		a.client, err = llm.NewClient(cmd.Context(), llmCfg, apiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	}

	if cfg.DatabaseURL != "" {
		a.db, err = db.Connect(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			a.close()
			return nil, err
		}
		if err := a.db.Migrate(cmd.Context()); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

// close releases the client, database and logger
func (a *app) close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn("failed to close LLM client", zap.Error(err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	_ = a.logger.Sync()
}

// extractor builds the text extractor, caching pages when a database is configured
func (a *app) extractor() *ingestion.Extractor {
	opts := &ingestion.Options{
		UseBrowser: a.cfg.UseBrowser,
		CacheTTL:   time.Duration(a.cfg.PageCacheHours) * time.Hour,
		Logger:     a.logger,
	}
	if a.db != nil {
		opts.Cache = a.db
	}
	return ingestion.NewExtractor(opts)
}

// deps wires the LLM-backed structurer and rewriter into session dependencies
func (a *app) deps() session.Deps {
	return session.Deps{
		Structurer: parsing.NewLLMStructurer(a.client),
		Rewriter:   rewriting.NewLLMRewriter(a.client),
		Extractor:  a.extractor(),
		Logger:     a.logger,
	}
}

// newSession starts a standalone session for a single CLI run
func (a *app) newSession() *session.Session {
	return session.New(uuid.New(), a.deps())
}

// sourceFlags selects where advert text comes from
type sourceFlags struct {
	file string
	text string
	url  string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.file, "file", "f", "", "Advert document (.txt, .docx or .pdf)")
	cmd.Flags().StringVarP(&s.text, "text", "t", "", "Advert text")
	cmd.Flags().StringVarP(&s.url, "url", "u", "", "Advert web page")
}

// source reads the selected source; a file wins over text, which wins over a URL
func (s *sourceFlags) source() (ingestion.Source, error) {
	src := ingestion.Source{Text: s.text, URL: s.url}
	if s.file != "" {
		data, err := os.ReadFile(s.file)
		if err != nil {
			return ingestion.Source{}, fmt.Errorf("failed to read %s: %w", s.file, err)
		}
		src.Filename = s.file
		src.Data = data
	}
	return src, nil
}

func (s *sourceFlags) empty() bool {
	return s.file == "" && s.text == "" && s.url == ""
}
