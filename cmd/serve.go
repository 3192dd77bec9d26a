package cmd

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-nutrition/app/controller"
	authgrpc "github.com/vibast-solutions/ms-go-nutrition/app/grpc"
	"github.com/vibast-solutions/ms-go-nutrition/app/middleware"
	"github.com/vibast-solutions/ms-go-nutrition/app/repository"
	"github.com/vibast-solutions/ms-go-nutrition/app/service"
	"github.com/vibast-solutions/ms-go-nutrition/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  `Start both HTTP (Echo) and gRPC servers for the diet and recipe API.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	tokens, err := service.NewTokenCodec(cfg.JWT)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure token codec")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "nutrition"),
	)
	service.RegisterMetrics(registry)

	authService := service.NewAuthService(
		db,
		repository.NewUserRepository(db),
		repository.NewRefreshTokenRepository(db),
		service.NewBcryptHasher(cfg.Password.HashCost, cfg.Password.HashConcurrency),
		tokens,
		cfg,
	)

	grpcServer := newGRPCServer(authService)
	go startGRPCServer(cfg, grpcServer)

	e := newHTTPServer(cfg, db, authService, registry)
	go startHTTPServer(cfg, e)

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("HTTP server shutdown failed")
	}
	grpcServer.GracefulStop()
}

func newHTTPServer(cfg *config.Config, db *sql.DB, authService service.AuthService, registry *prometheus.Registry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORS.Origins,
		AllowCredentials: true,
	}))
	if cfg.HTTP.RequestTimeout > 0 {
		e.Use(echomiddleware.ContextTimeout(cfg.HTTP.RequestTimeout))
	}

	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController()
	healthController := controller.NewHealthController(db)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	e.GET("/health", healthController.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", authController.Register)
	auth.POST("/login", authController.Login)
	auth.POST("/refresh", authController.Refresh)
	auth.POST("/logout", authController.Logout)

	users := api.Group("/users")
	users.Use(authMiddleware.RequireAuth)
	users.GET("/me", userController.Me)

	return e
}

func startHTTPServer(cfg *config.Config, e *echo.Echo) {
	httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

func newGRPCServer(authService service.AuthService) *grpc.Server {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		authgrpc.BearerUnaryInterceptor(authService, authgrpc.MethodCurrentUser),
	))
	authgrpc.RegisterAuthServiceServer(grpcServer, authgrpc.NewAuthServer(authService))
	return grpcServer
}

func startGRPCServer(cfg *config.Config, grpcServer *grpc.Server) {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	logrus.WithField("addr", grpcAddr).Info("Starting gRPC server")
	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		logrus.WithError(err).Fatal("Failed to start gRPC server")
	}
}
