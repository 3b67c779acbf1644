package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/brunolnetto/sql-adventure-sub001/internal/http/handlers"
	httpMW "github.com/brunolnetto/sql-adventure-sub001/internal/http/middleware"
	"github.com/brunolnetto/sql-adventure-sub001/internal/observability"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	HealthHandler    *httpH.HealthHandler
	AnalyticsHandler *httpH.AnalyticsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "sqleval"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.RequestIDs())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.ObserveRequests(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	v1 := r.Group("/v1")
	{
		if cfg.AnalyticsHandler != nil {
			v1.GET("/summary", cfg.AnalyticsHandler.GetSummary)
			v1.GET("/quests", cfg.AnalyticsHandler.ListQuests)
			v1.GET("/patterns", cfg.AnalyticsHandler.ListPatterns)
			v1.GET("/files", cfg.AnalyticsHandler.ListFiles)
			v1.GET("/recommendations", cfg.AnalyticsHandler.ListRecommendations)
		}
	}

	return r
}
