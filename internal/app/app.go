package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopportal/accounts-service/internal/config"
	"github.com/shopportal/accounts-service/internal/handler"
	"github.com/shopportal/accounts-service/internal/identity"
	"github.com/shopportal/accounts-service/internal/mail"
	"github.com/shopportal/accounts-service/internal/service"
	"github.com/shopportal/accounts-service/internal/store"
	"github.com/shopportal/accounts-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	provider := identity.NewPostgresProvider(
		infra.Postgres(),
		cfg.Auth.Secret,
		cfg.Auth.SessionTTL.Duration,
		cfg.Auth.VerificationTTL.Duration,
		cfg.Security.BCryptCost,
	)
	profiles := store.NewProfileStore(infra.Redis())

	// Without SMTP settings the mailer degrades to logging verification links.
	var transport mail.Transport
	if cfg.SMTP.Configured() {
		transport = mail.NewSMTPTransport(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass)
	}
	mailer := service.NewVerificationMailer(
		provider,
		transport,
		cfg.Mail.FromAddress(),
		cfg.Mail.FrontendURL,
		infra.Logger(),
	)

	blacklistService := service.NewSessionBlacklistService(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	userService := service.NewUserService(provider, profiles, mailer, infra.Logger())
	authService := service.NewAuthService(
		provider,
		profiles,
		mailer,
		blacklistService,
		infra.Logger(),
		cfg.Auth.SessionTTL.Duration,
	)

	sessionCookie := handler.SessionCookie{
		Name:   cfg.Auth.CookieName,
		TTL:    cfg.Auth.SessionTTL.Duration,
		Secure: cfg.IsProduction(),
	}

	authHandler := handler.NewAuthHandler(authService, userService, sessionCookie)
	userHandler := handler.NewUserHandler(userService)

	router := gin.Default()
	router.Use(otelgin.Middleware("accounts-service"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, userHandler, authService, sessionCookie, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	authService service.AuthService,
	sessionCookie handler.SessionCookie,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	auth := router.Group("/auth")
	{
		auth.POST("/login",
			handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
			authHandler.Login,
		)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/resend-verification",
			handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
			authHandler.ResendVerification,
		)
		auth.GET("/verify-email", authHandler.VerifyEmail)
		auth.GET("/me", handler.SessionMiddleware(authService, sessionCookie), authHandler.Me)
	}

	users := router.Group("/users")
	{
		users.POST("",
			handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
			userHandler.Create,
		)
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.PATCH("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
