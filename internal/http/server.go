// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shipquote/internal/http/handlers"
	"shipquote/internal/http/middleware"
	"shipquote/internal/modules/quote"
	"shipquote/internal/modules/tariff"
	"shipquote/internal/modules/zone"
)

type ServerDeps struct {
	Zones  *zone.Directory
	Tariff *tariff.Model
	Quotes *quote.Service
}

type Server struct {
	zones  *zone.Directory
	tariff *tariff.Model
	quotes *quote.Service
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		zones:  deps.Zones,
		tariff: deps.Tariff,
		quotes: deps.Quotes,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	status := handlers.NewStatusHandler(s.zones, s.tariff)
	r.GET("/health", status.Health)

	api := r.Group("/api")
	api.GET("/status", status.Status)

	zones := handlers.NewZoneHandler(s.zones)
	api.GET("/zones", zones.List)
	api.GET("/zones/:id", zones.Get)
	api.GET("/distance", zones.Distance)

	tariffs := handlers.NewTariffHandler(s.tariff)
	api.GET("/tariff", tariffs.Get)
	api.PATCH("/tariff", tariffs.Patch)
	api.GET("/presets", tariffs.ListPresets)
	api.POST("/presets", tariffs.SavePreset)
	api.POST("/presets/:id/apply", tariffs.ApplyPreset)

	quotes := handlers.NewQuoteHandler(s.quotes)
	api.POST("/quotes", quotes.Create)
	api.GET("/quotes/current", quotes.Current)
	api.POST("/quotes/batch", quotes.CreateBatch)
	api.GET("/quotes/batch", quotes.Batch)

	return r
}
