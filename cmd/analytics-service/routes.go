package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/shoppulse/docs"
	"github.com/MikeMC777/shoppulse/internal/analytics"
	"github.com/MikeMC777/shoppulse/internal/auth"
	"github.com/MikeMC777/shoppulse/internal/httpx"
)

type deps struct {
	reporter analytics.Reporter
	cache    reportInvalidator
	login    *auth.Service
	issuer   *auth.Issuer
	policy   *auth.Policy
	orders   orderStatusStore
	products productFinder
	events   eventWriter
	now      func() time.Time
}

func newRouter(d deps) *gin.Engine {
	if d.now == nil {
		d.now = time.Now
	}

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/auth/login", loginHandler(d.login))

	track := r.Group("", auth.Optional(d.issuer))
	track.POST("/events", trackEventHandler(d.events, d.products))
	track.POST("/cart", addToCartHandler(d.events, d.products))

	admin := r.Group("/admin", auth.Authenticate(d.issuer))
	admin.GET("/analytics",
		auth.Require(d.policy, auth.ResourceAnalytics, auth.ActionRead),
		analyticsHandler(d.reporter, d.now))
	admin.PUT("/orders/:id/status",
		auth.Require(d.policy, auth.ResourceOrders, auth.ActionWrite),
		updateOrderStatusHandler(d.orders, d.cache))

	return r
}
