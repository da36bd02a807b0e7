package model

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

// requestField binds a JSON key to its PromotionRequest field and decoder.
// decode returns the problem with raw, or "" once the field is set.
type requestField struct {
	key    string
	name   string // Go field name, as expected by StructPartial
	decode func(req *PromotionRequest, raw json.RawMessage) string
}

var requestFields = []requestField{
	{
		key:  "name",
		name: "Name",
		decode: func(req *PromotionRequest, raw json.RawMessage) string {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return "must be a string"
			}
			req.Name = &s
			return ""
		},
	},
	{
		key:  "product_id",
		name: "ProductID",
		decode: func(req *PromotionRequest, raw json.RawMessage) string {
			var n int64
			if err := json.Unmarshal(raw, &n); err != nil {
				return "must be an integer"
			}
			req.ProductID = &n
			return ""
		},
	},
	{
		key:  "discount_ratio",
		name: "DiscountRatio",
		decode: func(req *PromotionRequest, raw json.RawMessage) string {
			// decimal accepts quoted numbers; the wire format does not
			if len(raw) == 0 || raw[0] == '"' {
				return msgRatioNumber
			}
			d, msg := parseRatio(string(raw))
			if msg != "" {
				return msg
			}
			req.DiscountRatio = &d
			return ""
		},
	},
}

// DecodePromotion deserializes a complete promotion from a JSON object.
// All of name, product_id and discount_ratio must be present and valid;
// promotion_id, redeemed_count and unknown keys are ignored.
func DecodePromotion(v *validator.Validate, body []byte) (*Promotion, error) {
	req, present, verr := decodeRequest(body)
	if req != nil {
		validateRequest(v, req, present, false, verr)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	p := &Promotion{}
	req.apply(p)
	return p, nil
}

// ApplyPartial deserializes a partial promotion and applies it onto p.
// Absent fields keep their current value; present fields are validated as in DecodePromotion.
// p is left untouched when an error is returned.
func ApplyPartial(v *validator.Validate, p *Promotion, body []byte) error {
	req, present, verr := decodeRequest(body)
	if req != nil {
		validateRequest(v, req, present, true, verr)
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	req.apply(p)
	return nil
}

// decodeRequest type-checks each known key of the payload.
// It returns a nil request when the payload is not a JSON object.
func decodeRequest(body []byte) (*PromotionRequest, []string, *ValidationError) {
	verr := &ValidationError{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		verr.add("", "payload must be a JSON object")
		return nil, nil, verr
	}

	req := &PromotionRequest{}
	present := make([]string, 0, len(requestFields))
	for _, f := range requestFields {
		msg, ok := raw[f.key]
		if !ok {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			verr.add(f.key, "must not be null")
			continue
		}
		if problem := f.decode(req, msg); problem != "" {
			verr.add(f.key, problem)
			continue
		}
		present = append(present, f.name)
	}
	return req, present, verr
}

// validateRequest runs the struct rules and appends every failure not already reported.
func validateRequest(v *validator.Validate, req *PromotionRequest, present []string, partial bool, verr *ValidationError) {
	var err error
	if partial {
		if len(present) == 0 {
			return
		}
		err = v.StructPartial(req, present...)
	} else {
		err = v.Struct(req)
	}
	if err == nil {
		return
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		verr.add("", err.Error())
		return
	}
	for _, fe := range ve {
		if verr.has(fe.Field()) {
			continue
		}
		verr.add(fe.Field(), formatFieldError(fe))
	}
}

// formatFieldError converts a validator tag failure into a readable message.
func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "nonul":
		return "must not contain NUL characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte", "decimal_lte":
		return "must be at most " + fe.Param()
	case "decimal_gt":
		return "must be greater than " + fe.Param()
	case "decimal_scale":
		return "must have at most " + fe.Param() + " decimal places"
	default:
		return "is invalid"
	}
}
