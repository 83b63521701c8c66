package event

import (
	"errors"
	"time"
)

type Type string

const (
	TypeProductView       Type = "product_view"
	TypeAddToCart         Type = "add_to_cart"
	TypeCheckoutStarted   Type = "checkout_started"
	TypeCheckoutCompleted Type = "checkout_completed"
)

var (
	ErrInvalidType    = errors.New("invalid event type")
	ErrMissingProduct = errors.New("productId is required for product_view")
)

func (t Type) Valid() bool {
	switch t {
	case TypeProductView, TypeAddToCart, TypeCheckoutStarted, TypeCheckoutCompleted:
		return true
	}
	return false
}

// Event is one entry of the append-only tracking log. UserID and
// ProductID are empty for anonymous or product-less events.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	UserID    string    `json:"userId,omitempty"`
	ProductID string    `json:"productId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductViews is the product_view count for one product.
type ProductViews struct {
	ProductID string
	Views     int
}

// TrackRequest payload of a storefront tracking call. The user comes from
// the bearer token, never from the body.
// swagger:model TrackRequest
type TrackRequest struct {
	Type      string `json:"type"      example:"product_view"`
	ProductID string `json:"productId" example:"clx0p1k2a0000abcd"`
}

// CartRequest payload of an add-to-cart call.
// swagger:model CartRequest
type CartRequest struct {
	ProductID string `json:"productId" example:"clx0p1k2a0000abcd"`
}
