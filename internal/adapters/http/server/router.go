package server

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// registerRoutes registers all HTTP routes using Echo
func registerRoutes(e *echo.Echo, handler *HandlerAdapter) {
	// Health check
	e.GET("/health", handler.HealthCheck)

	// Swagger documentation
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Journal updates
	if handler.events != nil {
		e.GET("/ws/events", echo.WrapHandler(handler.events))
	}

	// API v1 group
	v1 := e.Group("/api/v1")

	v1.GET("/status", handler.GetStatus)
	v1.POST("/tokens", handler.GenerateToken)
	v1.GET("/owner", handler.GetOwner)

	// Network endpoints
	v1.GET("/network", handler.GetNetwork)
	v1.POST("/network/ensure", handler.EnsureNetwork)

	// Minter endpoints
	minters := v1.Group("/minters")
	minters.POST("", handler.AddMinter)
	minters.GET("/:address", handler.GetMinter)
	minters.DELETE("/:address", handler.RemoveMinter)

	// Certificate endpoints
	certificates := v1.Group("/certificates")
	certificates.GET("/:token", handler.GetCertificate)
	certificates.DELETE("/:token", handler.BurnCertificate)

	// Transaction journal endpoints
	transactions := v1.Group("/transactions")
	transactions.GET("", handler.GetTransactions)
	transactions.GET("/:hash", handler.GetTransactionByHash)
}
