package model

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PromotionFilter selects promotions by at most one exact-match field.
// A zero filter selects every promotion.
type PromotionFilter struct {
	Name          *string
	ProductID     *int64
	DiscountRatio *decimal.Decimal
}

// NewPromotionFilter builds a filter from raw query values.
// Only the first non-empty value in the order name, product_id, discount_ratio is used.
func NewPromotionFilter(name, productID, discountRatio string) (PromotionFilter, error) {
	switch {
	case name != "":
		if strings.ContainsRune(name, 0) {
			return PromotionFilter{}, &ValidationError{Fields: []FieldError{{Field: "name", Message: "must not contain NUL characters"}}}
		}
		return PromotionFilter{Name: &name}, nil
	case productID != "":
		id, err := strconv.ParseInt(productID, 10, 64)
		if err != nil {
			return PromotionFilter{}, &ValidationError{Fields: []FieldError{{Field: "product_id", Message: "must be an integer"}}}
		}
		return PromotionFilter{ProductID: &id}, nil
	case discountRatio != "":
		d, msg := parseRatio(discountRatio)
		if msg != "" {
			return PromotionFilter{}, &ValidationError{Fields: []FieldError{{Field: "discount_ratio", Message: msg}}}
		}
		return PromotionFilter{DiscountRatio: &d}, nil
	default:
		return PromotionFilter{}, nil
	}
}
