package http

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/devsanbid/bravo-test-sub001/internal/observability"
)

// ServerOptions tunes the fiber application.
type ServerOptions struct {
	Name           string
	BodyLimit      int
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// NewServer builds the fiber application with middlewares and routes attached.
func NewServer(opts ServerOptions, routes RouteConfig) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               opts.Name,
		BodyLimit:             opts.BodyLimit,
		CaseSensitive:         true,
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          ErrorHandler(logger, opts.Metrics),
	})
	RegisterMiddlewares(app, logger, opts.Metrics, opts.RequestTimeout)
	if routes.Metrics == nil {
		routes.Metrics = opts.Metrics
	}
	RegisterRoutes(app, routes)
	return app
}
