package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/okarpov/jobradar/internal/ai/gemini"
	"github.com/okarpov/jobradar/internal/job"
	"github.com/okarpov/jobradar/internal/logger"
	"github.com/okarpov/jobradar/internal/pipeline"
	"github.com/okarpov/jobradar/internal/secrets"
	"github.com/okarpov/jobradar/internal/source"
	"github.com/okarpov/jobradar/internal/store"
)

// App bundles everything a command needs: config, logger, the open store,
// the configured sources, and the optional scorer. Commands build it once
// and pass it around instead of reaching into globals.
type App struct {
	Config  *Config
	Logger  *zap.Logger
	Store   *store.Store
	Sources []source.Source
	Scorer  *gemini.Scorer
	Profile *job.Profile
}

// newApp builds the application context from the loaded configuration.
func newApp(ctx context.Context) (*App, error) {
	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}

	st, err := store.Open(config.DBPath)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	a := &App{
		Config: config,
		Logger: zl,
		Store:  st,
	}

	a.Sources = buildSources(config.Sources, zl)

	if config.ProfileFile != "" {
		profile, err := job.LoadProfile(config.ProfileFile)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("loading profile: %w", err)
		}
		a.Profile = profile
	}

	if config.AI != nil && config.AI.Enabled {
		scorer, err := newScorer(ctx, config.AI, zl)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		a.Scorer = scorer
	}

	return a, nil
}

func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("closing store", zap.Error(err))
	}
	_ = a.Logger.Sync()
}

// Pipeline assembles a pipeline run from the app's parts.
func (a *App) Pipeline() *pipeline.Pipeline {
	search := a.Config.Search
	if search == nil {
		search = &SearchConfig{}
	}

	p := &pipeline.Pipeline{
		Sources:  a.Sources,
		Fallback: source.NewSample(a.Logger),
		Store:    a.Store,
		Profile:  a.Profile,
		Logger:   a.Logger,
		Query: source.Query{
			Keywords:  search.Keywords,
			Locations: search.Locations,
			Quota:     search.DailyQuota,
		},
		BatchSize:  search.BatchSize,
		BatchDelay: search.BatchDelay,
	}

	if a.Scorer != nil && a.Profile != nil {
		p.Scorer = a.Scorer
	}

	return p
}

// buildSources instantiates the enabled source adapters in priority order:
// feed first, then the guest search, then the browser. The sample source
// replaces the network for local runs.
func buildSources(cfg *SourcesConfig, zl *zap.Logger) []source.Source {
	if cfg == nil {
		return []source.Source{source.NewSample(zl)}
	}

	if cfg.Sample {
		return []source.Source{source.NewSample(zl)}
	}

	var sources []source.Source
	if cfg.Feed != nil && cfg.Feed.Enabled {
		sources = append(sources, source.NewFeed(cfg.Feed.URL, zl))
	}
	if cfg.Search != nil && cfg.Search.Enabled {
		sources = append(sources, source.NewSearch(cfg.Search.URL, zl))
	}
	if cfg.Browser != nil && cfg.Browser.Enabled {
		sources = append(sources, source.NewBrowser(browserConfig(cfg.Browser, zl), zl))
	}

	if len(sources) == 0 {
		zl.Warn("no sources enabled, falling back to the sample source")
		sources = append(sources, source.NewSample(zl))
	}

	return sources
}

func browserConfig(cfg *BrowserSourceConfig, zl *zap.Logger) source.BrowserConfig {
	bc := source.BrowserConfig{
		LoginURL:  cfg.LoginURL,
		SearchURL: cfg.SearchURL,
		MaxSteps:  cfg.MaxSteps,
		Headless:  cfg.Headless,
	}

	email, err := secrets.Load(secrets.Source{Name: "browser email", File: cfg.EmailFile})
	if err != nil {
		zl.Warn("browser source will be skipped", zap.Error(err))
		return bc
	}
	password, err := secrets.Load(secrets.Source{Name: "browser password", File: cfg.PasswordFile})
	if err != nil {
		zl.Warn("browser source will be skipped", zap.Error(err))
		return bc
	}

	bc.Email = email
	bc.Password = password
	return bc
}

func newScorer(ctx context.Context, cfg *AIConfig, zl *zap.Logger) (*gemini.Scorer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	scorerLogger := zl.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewScorer(generator, scorerLogger, cfg.Gemini.MaxLogLength), nil
}
