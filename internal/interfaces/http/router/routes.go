package router

import (
	"github.com/gin-gonic/gin"
	"github.com/landedcost/backend/internal/interfaces/http/handler"
	"github.com/landedcost/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the HTTP handlers of the landed cost API
type Handlers struct {
	Shipments *handler.ShipmentHandler
	Documents *handler.ShipmentDocumentHandler
	Products  *handler.ProductHandler
	System    *handler.SystemHandler

	// ImportLimiter throttles sheet uploads. Nil disables throttling.
	ImportLimiter *middleware.RateLimiter
}

// ShipmentRoutes builds the /shipments group
func ShipmentRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("shipments", "/shipments")
	g.POST("", h.Shipments.Create).
		GET("", h.Shipments.List).
		POST("/allocation/preview", h.Shipments.PreviewAllocation).
		POST("/import-items", middleware.RateLimitByKey(h.ImportLimiter, clientIP), h.Shipments.ImportItems).
		GET("/:id", h.Shipments.GetByID).
		PUT("/:id/items", h.Shipments.ReplaceItems).
		POST("/:id/status", h.Shipments.SetStatus).
		GET("/:id/movements", h.Shipments.ListMovements)

	if h.Documents != nil {
		g.Group("documents", "/:id/documents").
			POST("", h.Documents.Register).
			GET("", h.Documents.List).
			DELETE("/:documentId", h.Documents.Delete)
	}
	return g
}

// ProductRoutes builds the /products group
func ProductRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("products", "/products").
		POST("", h.Products.Create).
		GET("", h.Products.List).
		GET("/:id", h.Products.GetByID).
		GET("/:id/movements", h.Products.ListMovements).
		GET("/:id/movements/export", h.Products.ExportMovements)
}

// SystemRoutes builds the /system group
func SystemRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)
}

// Mount registers every domain group under the versioned prefix and the
// unversioned health endpoint
func Mount(engine *gin.Engine, h Handlers, opts ...RouterOption) *Router {
	r := NewRouter(engine, opts...)
	r.Register(ShipmentRoutes(h)).
		Register(ProductRoutes(h)).
		Register(SystemRoutes(h))
	r.Setup()

	engine.GET("/health", h.System.Health)
	return r
}

func clientIP(c *gin.Context) string {
	return c.ClientIP()
}
