package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/rechargemock/internal/apistatus"
	billpaydomain "github.com/smallbiznis/rechargemock/internal/billpay/domain"
	catalogdomain "github.com/smallbiznis/rechargemock/internal/catalog/domain"
	"github.com/smallbiznis/rechargemock/internal/config"
	"github.com/smallbiznis/rechargemock/internal/observability"
	obsmiddleware "github.com/smallbiznis/rechargemock/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rechargemock/internal/observability/metrics"
	obstracing "github.com/smallbiznis/rechargemock/internal/observability/tracing"
	"github.com/smallbiznis/rechargemock/internal/ratelimit"
	rechargedomain "github.com/smallbiznis/rechargemock/internal/recharge/domain"
	"github.com/smallbiznis/rechargemock/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(recoverWithInternalError))
	r.Use(correlation.GinMiddleware())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(obstracing.MiddlewareConfig{
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(CORS(cfg.CORSAllowedOrigins))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(cfg, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	catalogSvc  catalogdomain.Service
	rechargeSvc rechargedomain.Service
	billpaySvc  billpaydomain.Service
	statusSvc   *apistatus.Service
	obsMetrics  *obsmetrics.Metrics
	limiter     *ratelimit.SubmissionLimiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	CatalogSvc  catalogdomain.Service
	RechargeSvc rechargedomain.Service
	BillPaySvc  billpaydomain.Service
	StatusSvc   *apistatus.Service
	ObsMetrics  *obsmetrics.Metrics          `optional:"true"`
	Limiter     *ratelimit.SubmissionLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         log.Named("http.server"),
		catalogSvc:  p.CatalogSvc,
		rechargeSvc: p.RechargeSvc,
		billpaySvc:  p.BillPaySvc,
		statusSvc:   p.StatusSvc,
		obsMetrics:  p.ObsMetrics,
		limiter:     p.Limiter,
	}

	svc.registerGeneralRoutes()
	svc.registerRechargeRoutes()
	svc.registerBillPayRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerGeneralRoutes() {
	s.engine.GET("/", s.Index)
	s.engine.GET("/health", s.Health)

	api := s.engine.Group("/api")
	api.GET("/test", s.Ping)
	api.POST("/test", s.EchoTest)
	api.GET("/status", s.GetAPIStatus)
}

func (s *Server) registerRechargeRoutes() {
	api := s.engine.Group("/api")

	api.GET("/operators", s.ListOperators)
	api.POST("/recharge", s.SubmissionRateLimit(rechargeSubject), s.SubmitRecharge)
	api.GET("/recharge/status/:transactionId", s.GetRechargeStatus)
	api.GET("/recharge/history", s.ListRechargeHistory)
	api.POST("/balance", s.CheckBalance)
}

func (s *Server) registerBillPayRoutes() {
	billpay := s.engine.Group("/api/billpay")

	billpay.GET("/providers", s.ListBillProviders)
	billpay.POST("", s.SubmissionRateLimit(billPaySubject), s.SubmitBillPayment)
	billpay.POST("/verify", s.VerifyBillAccount)
	billpay.GET("/status/:transactionId", s.GetBillPaymentStatus)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrEndpointNotFound)
	})
}
