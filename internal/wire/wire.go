package wire

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marketplace-api/internal/adaptor"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/scheduler"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/metrics"
	"marketplace-api/pkg/middleware"
	"marketplace-api/pkg/ratelimit"
	"marketplace-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router    *chi.Mux
	Scheduler *scheduler.CleanupScheduler
	Metrics   *metrics.Registry

	closers []func() error
}

// Close releases what Wiring opened (Redis client, scheduler).
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	for _, c := range a.closers {
		_ = c()
	}
}

// routeGuards are the middleware stacks the per-domain wire functions pick from.
type routeGuards struct {
	auth  func(http.Handler) http.Handler
	staff func(http.Handler) http.Handler
	admin func(http.Handler) http.Handler
}

// otpThrottle is the limiter behind the OTP issuing routes and how it keys contacts.
type otpThrottle struct {
	limiter ratelimit.Limiter
	key     middleware.KeyResolver
}

// Wiring menginisialisasi semua dependencies
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) (*App, error) {
	app := &App{Metrics: metrics.NewRegistry()}

	service, err := usecase.NewService(repo, config, app.Metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("init services: %w", err)
	}
	handler := adaptor.NewHandler(service, logger)

	limiter, closeLimiter, err := newOTPLimiter(config, logger)
	if err != nil {
		return nil, err
	}
	if closeLimiter != nil {
		app.closers = append(app.closers, closeLimiter)
	}

	app.Scheduler = scheduler.NewCleanupScheduler(config.OTP.CleanupSchedule, app.Metrics.Jobs, logger).
		Register(scheduler.JobOTPCleanup, service.OTP.SweepExpired).
		Register(scheduler.JobSessionCleanup, repo.Session.CleanExpiredSessions)

	guards := routeGuards{
		auth:  middleware.Auth(service.Tokens, repo.User, logger),
		staff: middleware.Staff(logger),
		admin: middleware.Admin(logger),
	}

	throttle := otpThrottle{limiter: limiter, key: middleware.PhoneOwnerKey(repo.User, logger)}
	app.Router = setupRouter(handler, guards, throttle, app.Metrics, config, logger)
	return app, nil
}

// setupRouter konfigurasi Chi router
func setupRouter(
	handler *adaptor.Handler,
	guards routeGuards,
	throttle otpThrottle,
	reg *metrics.Registry,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	r.Route("/api/v1", func(api chi.Router) {
		wireAuth(api, handler.Auth, guards, throttle, reg.OTP, logger)
		wireUser(api, handler.User, guards)
		wireVendor(api, handler.Vendor, guards)
		wireBranch(api, handler.Branch, guards)
		wireCategory(api, handler.Category, guards)
		wireSubcategory(api, handler.Subcategory, guards)
		wireProduct(api, handler.Product, guards)
		wireOffer(api, handler.Offer, guards)
		wireReview(api, handler.Review, guards)
		wireNotification(api, handler.Notification, guards)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if config.Metrics.Enabled {
		r.Method(http.MethodGet, config.Metrics.Path, reg.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, "Route not found")
	})

	return r
}

// newOTPLimiter picks the limiter backend. The returned closer may be nil.
func newOTPLimiter(config *utils.Config, logger *zap.Logger) (ratelimit.Limiter, func() error, error) {
	cfg := config.RateLimit
	maxRequests, window := cfg.MaxRequests, cfg.Window
	if maxRequests <= 0 {
		maxRequests = ratelimit.DefaultMaxRequests
	}
	if window <= 0 {
		window = ratelimit.DefaultWindow
	}

	switch cfg.Backend {
	case "", "memory":
		logger.Info("OTP rate limiter: in-memory (per process)",
			zap.Int("max_requests", maxRequests), zap.Duration("window", window))
		return ratelimit.NewMemoryLimiter(maxRequests, window), nil, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", config.Redis.Addr, err)
		}

		logger.Info("OTP rate limiter: redis",
			zap.String("addr", config.Redis.Addr),
			zap.Int("max_requests", maxRequests), zap.Duration("window", window))
		return ratelimit.NewRedisLimiter(client, "otp", maxRequests, window), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", cfg.Backend)
	}
}
