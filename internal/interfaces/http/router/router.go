// Package router mounts the HTTP routes of the service on a gin engine.
package router

import (
	"net/http"

	"github.com/fieldsales/backend/internal/interfaces/http/handler"
	"github.com/fieldsales/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// APIPrefix is the versioned root of the sales API
const APIPrefix = "/api/v1"

// Deps are the handlers and limits the routes are built from
type Deps struct {
	Reports *handler.SalesReportHandler
	Uploads *handler.SalesUploadHandler
	// Health is mounted at /health, outside the versioned API, when set
	Health *handler.HealthHandler
	// MaxUploadBytes caps every upload body
	MaxUploadBytes int64
	// UploadMiddleware runs on upload routes after the body limit
	UploadMiddleware []gin.HandlerFunc
}

type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// reportRoutes are read-only and share no middleware beyond the engine's
func reportRoutes(h *handler.SalesReportHandler) []route {
	return []route{
		{http.MethodGet, "/dashboard", h.Dashboard},
		{http.MethodGet, "/channel-wise", h.ChannelWise},
		{http.MethodGet, "/channel-wise/export", h.ChannelWiseExport},
		{http.MethodGet, "/model-wise", h.ModelWise},
		{http.MethodGet, "/market", h.Market},
		{http.MethodGet, "/employees/:code", h.Employee},
	}
}

func uploadRoutes(h *handler.SalesUploadHandler) []route {
	return []route{
		{http.MethodPost, "/records/upload", h.UploadRecords},
		{http.MethodPost, "/models/upload", h.UploadModelReferences},
		{http.MethodPost, "/targets/upload", h.UploadChannelTargets},
		{http.MethodPost, "/employees/upload", h.UploadEmployees},
	}
}

// Mount registers every route on engine. Report and upload routes live
// under APIPrefix/sales; uploads get their own group so the body limit and
// the upload middleware never touch report requests.
func Mount(engine *gin.Engine, d Deps) {
	if d.Health != nil {
		engine.GET("/health", d.Health.Health)
	}

	sales := engine.Group(APIPrefix + "/sales")
	for _, r := range reportRoutes(d.Reports) {
		sales.Handle(r.method, r.path, r.handler)
	}

	uploads := sales.Group("")
	uploads.Use(middleware.BodyLimit(d.MaxUploadBytes))
	uploads.Use(d.UploadMiddleware...)
	for _, r := range uploadRoutes(d.Uploads) {
		uploads.Handle(r.method, r.path, r.handler)
	}
}
