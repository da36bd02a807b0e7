package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// discount_ratio is a JSON number on the wire, not a quoted string
	decimal.MarshalJSONWithoutQuotes = true
}

// Promotion represents a discount campaign for a single product.
// Field order defines the JSON key order of the serialized form.
type Promotion struct {
	PromotionID   int64           `json:"promotion_id"`
	Name          string          `json:"name"`
	ProductID     int64           `json:"product_id"`
	DiscountRatio decimal.Decimal `json:"discount_ratio"`
	RedeemedCount int             `json:"redeemed_count"`
	CreatedAt     time.Time       `json:"-"`
	UpdatedAt     time.Time       `json:"-"`
}

// PromotionRequest is the validated shape of a create or update body.
// Server-owned fields (promotion_id, redeemed_count) are absent.
type PromotionRequest struct {
	Name          *string          `json:"name" validate:"required,notblank,nonul,max=255"`
	ProductID     *int64           `json:"product_id" validate:"required,gte=1"`
	DiscountRatio *decimal.Decimal `json:"discount_ratio" validate:"required,decimal_scale=6,decimal_gt=0,decimal_lte=1"`
}

// apply copies every set field of the request onto p.
func (r *PromotionRequest) apply(p *Promotion) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.ProductID != nil {
		p.ProductID = *r.ProductID
	}
	if r.DiscountRatio != nil {
		p.DiscountRatio = *r.DiscountRatio
	}
}
