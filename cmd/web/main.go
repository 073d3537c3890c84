package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lgarza/tiendita/internal/ai"
	"github.com/lgarza/tiendita/internal/business"
	"github.com/lgarza/tiendita/internal/envstruct"
	"github.com/lgarza/tiendita/internal/errors"
	"github.com/lgarza/tiendita/internal/interview"
	"github.com/lgarza/tiendita/internal/logging"
	"github.com/lgarza/tiendita/internal/pprofserver"
)

type application struct {
	logger     *slog.Logger
	completer  ai.Completer
	backoffice *business.Client
	interview  *interview.Interview
}

type config struct {
	// Addr is the listen address, e.g. localhost:4000.
	Addr string `env:"TIENDITA_ADDR" envDefault:"localhost:4000"`
	// PprofPort is the localhost pprof port. Empty disables the pprof server.
	PprofPort string `env:"TIENDITA_PPROF_PORT" envDefault:":6060"`
	// AIAPIURL is the base URL of the OpenAI-compatible completion service.
	AIAPIURL string `env:"AI_API_URL"`
	// AIAPIKey authenticates against the completion service. Local servers
	// usually accept any value.
	AIAPIKey string `env:"AI_API_KEY" envDefault:"unused"`
	// AIModel is the model requested for every completion.
	AIModel string `env:"AI_MODEL"`
	// BusinessAPIURL is the base URL of the backoffice API.
	BusinessAPIURL string `env:"BUSINESS_API_URL"`
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{ //nolint:exhaustruct
		Level:     slog.LevelDebug,
		AddSource: true,
	}))
	logger := slog.New(loggerHandler)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error("load .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(context.Background(), logger, os.LookupEnv); err != nil {
		logger.Error("server exited", errors.SlogError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PprofPort != "" {
		// Listening on localhost keeps pprof closed to the world.
		pprofserver.Launch(cfg.PprofPort, logger)
	}

	completer := ai.NewClient(cfg.AIAPIURL, cfg.AIAPIKey, cfg.AIModel)
	backoffice := business.NewClient(cfg.BusinessAPIURL, logger)
	dispatcher := business.NewDispatcher(backoffice, completer, logger)

	app := application{
		logger:     logger,
		completer:  completer,
		backoffice: backoffice,
		interview:  interview.New(completer, dispatcher, logger),
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "configuration loaded",
		slog.String("aiAPIURL", cfg.AIAPIURL),
		slog.String("aiModel", cfg.AIModel),
		slog.String("businessAPIURL", cfg.BusinessAPIURL))

	return app.configureAndStartServer(ctx, cfg.Addr)
}
