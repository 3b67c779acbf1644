package app

import (
	httpapi "github.com/brunolnetto/sql-adventure-sub001/internal/http"
	httpH "github.com/brunolnetto/sql-adventure-sub001/internal/http/handlers"
)

// NewHTTPServer builds the read-side API over the evaluation store.
func (a *App) NewHTTPServer() (*httpapi.Server, error) {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return nil, err
	}
	a.Log.Info("Wiring handlers...")
	return httpapi.NewServer(a.Log, httpapi.RouterConfig{
		Metrics:          a.Metrics,
		ServiceName:      "sqleval",
		CORSOrigins:      a.Cfg.CORSOrigins,
		HealthHandler:    httpH.NewHealthHandler(sqlDB),
		AnalyticsHandler: httpH.NewAnalyticsHandler(a.Log, a.Services.Analytics),
	}), nil
}
