package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/shoppulse/internal/analytics"
	"github.com/MikeMC777/shoppulse/internal/auth"
	"github.com/MikeMC777/shoppulse/internal/event"
	"github.com/MikeMC777/shoppulse/internal/httpx"
	"github.com/MikeMC777/shoppulse/internal/order"
	"github.com/MikeMC777/shoppulse/internal/product"
)

type orderStatusStore interface {
	GetByID(ctx context.Context, id string) (*order.Order, error)
	UpdateStatus(ctx context.Context, id string, status order.Status) error
}

type productFinder interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

// reportInvalidator drops a cached report. Nil when caching is off.
type reportInvalidator interface {
	Invalidate(ctx context.Context)
}

type eventWriter interface {
	Insert(ctx context.Context, e *event.Event) error
}

// loginHandler godoc
// @Summary      Sign in
// @Description  Exchanges email and password for a session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      auth.LoginRequest  true  "credentials"
// @Success      200   {object}  auth.LoginResponse
// @Failure      400   {object}  httpx.HTTPError
// @Failure      401   {object}  httpx.HTTPError
// @Router       /auth/login [post]
func loginHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Abort(c, http.StatusBadRequest, "email and password are required")
			return
		}
		res, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			httpx.Abort(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			log.Printf("[auth] login failed rid=%s err=%v", httpx.RequestIDFrom(c), err)
			httpx.Abort(c, http.StatusInternalServerError, "login failed")
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// analyticsHandler godoc
// @Summary      Dashboard report
// @Description  Sales, product, customer, inventory and order-status metrics computed at request time.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  analytics.Report
// @Failure      401  {object}  httpx.HTTPError
// @Failure      403  {object}  httpx.HTTPError
// @Failure      503  {object}  httpx.HTTPError
// @Router       /admin/analytics [get]
func analyticsHandler(rep analytics.Reporter, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := rep.ComputeReport(c.Request.Context(), now())
		if err != nil {
			log.Printf("[analytics] rid=%s err=%v", httpx.RequestIDFrom(c), err)
			httpx.Abort(c, http.StatusServiceUnavailable, analytics.ErrReportUnavailable.Error())
			return
		}
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, report)
	}
}

// updateOrderStatusHandler godoc
// @Summary      Change order status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                     true  "order id"
// @Param        body  body      order.UpdateStatusRequest  true  "new status"
// @Success      200   {object}  order.Order
// @Failure      400   {object}  httpx.HTTPError
// @Failure      404   {object}  httpx.HTTPError
// @Router       /admin/orders/{id}/status [put]
func updateOrderStatusHandler(repo orderStatusStore, reports reportInvalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Abort(c, http.StatusBadRequest, "invalid body")
			return
		}
		st := order.Status(strings.ToLower(strings.TrimSpace(req.Status)))
		if !st.Valid() {
			httpx.Abort(c, http.StatusBadRequest, "invalid status")
			return
		}

		id := c.Param("id")
		ctx := c.Request.Context()
		if err := repo.UpdateStatus(ctx, id, st); err != nil {
			if errors.Is(err, order.ErrNotFound) {
				httpx.Abort(c, http.StatusNotFound, "order not found")
				return
			}
			log.Printf("[orders] update status id=%s err=%v", id, err)
			httpx.Abort(c, http.StatusInternalServerError, "update failed")
			return
		}
		if reports != nil {
			reports.Invalidate(ctx)
		}
		o, err := repo.GetByID(ctx, id)
		if err != nil {
			log.Printf("[orders] reload id=%s err=%v", id, err)
			httpx.Abort(c, http.StatusInternalServerError, "update failed")
			return
		}
		log.Printf("[orders] status id=%s status=%s", id, st)
		c.JSON(http.StatusOK, o)
	}
}

// trackEventHandler godoc
// @Summary      Record a storefront event
// @Description  Appends a tracking event. A bearer token, when present, attributes it to the user.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        body  body      event.TrackRequest  true  "event"
// @Success      201   {object}  map[string]bool
// @Failure      400   {object}  httpx.HTTPError
// @Router       /events [post]
func trackEventHandler(events eventWriter, products productFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req event.TrackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Abort(c, http.StatusBadRequest, "invalid body")
			return
		}
		track(c, events, products, event.Type(req.Type), req.ProductID)
	}
}

// addToCartHandler godoc
// @Summary      Record an add-to-cart
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        body  body      event.CartRequest  true  "product"
// @Success      201   {object}  map[string]bool
// @Failure      400   {object}  httpx.HTTPError
// @Router       /cart [post]
func addToCartHandler(events eventWriter, products productFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req event.CartRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ProductID) == "" {
			httpx.Abort(c, http.StatusBadRequest, "productId is required")
			return
		}
		track(c, events, products, event.TypeAddToCart, req.ProductID)
	}
}

func track(c *gin.Context, events eventWriter, products productFinder, typ event.Type, productID string) {
	e := &event.Event{Type: typ, ProductID: strings.TrimSpace(productID)}
	if !e.Type.Valid() {
		httpx.Abort(c, http.StatusBadRequest, event.ErrInvalidType.Error())
		return
	}
	if e.Type == event.TypeProductView && e.ProductID == "" {
		httpx.Abort(c, http.StatusBadRequest, event.ErrMissingProduct.Error())
		return
	}

	ctx := c.Request.Context()
	if e.ProductID != "" {
		if _, err := products.GetByID(ctx, e.ProductID); err != nil {
			if errors.Is(err, product.ErrNotFound) {
				httpx.Abort(c, http.StatusBadRequest, "unknown product")
				return
			}
			log.Printf("[events] product lookup id=%s err=%v", e.ProductID, err)
			httpx.Abort(c, http.StatusInternalServerError, "tracking failed")
			return
		}
	}
	if claims, ok := auth.ClaimsFrom(c); ok {
		e.UserID = claims.UserID
	}

	if err := events.Insert(ctx, e); err != nil {
		log.Printf("[events] insert type=%s err=%v", e.Type, err)
		httpx.Abort(c, http.StatusInternalServerError, "tracking failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}
