// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tavolo/internal/http/handlers"
	"tavolo/internal/http/middleware"
	"tavolo/internal/modules/batching"
	"tavolo/internal/modules/courier"
	"tavolo/internal/modules/dispatch"
	"tavolo/internal/modules/order"
)

type ServerDeps struct {
	Dispatch *dispatch.Service
	Orders   *order.Store
	Routes   *batching.Store
	Couriers *courier.Directory
	Log      *logrus.Logger
}

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(deps.Log), middleware.Recovery())

	orderHandler := handlers.NewOrderHandler(deps.Orders, deps.Dispatch)
	r.POST("/api/orders", orderHandler.Create)
	r.GET("/api/orders/:id", orderHandler.Get)
	r.POST("/api/orders/:id/ready", orderHandler.Ready)

	dispatchHandler := handlers.NewDispatchHandler(deps.Dispatch)
	r.POST("/api/dispatch/suggest", dispatchHandler.Suggest)
	r.GET("/api/stores/:id/couriers/rank", dispatchHandler.Rank)

	courierHandler := handlers.NewCourierHandler(deps.Couriers)
	r.PUT("/api/couriers/:id/heartbeat", courierHandler.Heartbeat)
	r.DELETE("/api/couriers/:id", courierHandler.SignOff)

	routeHandler := handlers.NewRouteHandler(deps.Routes)
	r.GET("/api/routes/:id", routeHandler.Get)
	r.POST("/api/routes/:id/advance", routeHandler.Advance)
	r.POST("/api/routes/:id/cancel", routeHandler.Cancel)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
