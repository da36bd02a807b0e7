package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/promotion-service/internal/validator"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestPromotion_JSONKeyOrder(t *testing.T) {
	p := Promotion{
		PromotionID:   7,
		Name:          "SPRING10",
		ProductID:     42,
		DiscountRatio: decimal.RequireFromString("0.1"),
		RedeemedCount: 3,
	}

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t,
		`{"promotion_id":7,"name":"SPRING10","product_id":42,"discount_ratio":0.1,"redeemed_count":3}`,
		string(out))
}

func TestDecodePromotion_RoundTrip(t *testing.T) {
	v := validator.New()

	promotions := []Promotion{
		{PromotionID: 1, Name: "SPRING10", ProductID: 42, DiscountRatio: decimal.RequireFromString("0.1")},
		{PromotionID: 2, Name: "FULL", ProductID: 1, DiscountRatio: decimal.RequireFromString("1"), RedeemedCount: 9},
		{PromotionID: 3, Name: "  padded name ", ProductID: 9000000000, DiscountRatio: decimal.RequireFromString("0.125")},
	}

	for _, p := range promotions {
		t.Run(p.Name, func(t *testing.T) {
			body, err := json.Marshal(p)
			require.NoError(t, err)

			got, err := DecodePromotion(v, body)
			require.NoError(t, err)

			assert.Equal(t, p.Name, got.Name)
			assert.Equal(t, p.ProductID, got.ProductID)
			assert.True(t, p.DiscountRatio.Equal(got.DiscountRatio), "ratio %s != %s", p.DiscountRatio, got.DiscountRatio)
			assert.Zero(t, got.PromotionID, "promotion_id is server-assigned")
			assert.Zero(t, got.RedeemedCount, "redeemed_count only changes through redeem")
		})
	}
}

func TestDecodePromotion_IgnoresUnknownKeys(t *testing.T) {
	body := `{"name":"SPRING10","product_id":42,"discount_ratio":0.1,"color":"green"}`

	p, err := DecodePromotion(validator.New(), []byte(body))
	require.NoError(t, err)
	assert.Equal(t, "SPRING10", p.Name)
}

func TestDecodePromotion_Invalid(t *testing.T) {
	v := validator.New()

	testCases := []struct {
		name   string
		body   string
		fields []string
	}{
		{"empty_object", `{}`, []string{"name", "product_id", "discount_ratio"}},
		{"missing_name", `{"product_id":42,"discount_ratio":0.1}`, []string{"name"}},
		{"blank_name", `{"name":"   ","product_id":42,"discount_ratio":0.1}`, []string{"name"}},
		{"name_not_string", `{"name":12,"product_id":42,"discount_ratio":0.1}`, []string{"name"}},
		{"null_name", `{"name":null,"product_id":42,"discount_ratio":0.1}`, []string{"name"}},
		{"product_id_string", `{"name":"A","product_id":"42","discount_ratio":0.1}`, []string{"product_id"}},
		{"product_id_fraction", `{"name":"A","product_id":4.2,"discount_ratio":0.1}`, []string{"product_id"}},
		{"product_id_zero", `{"name":"A","product_id":0,"discount_ratio":0.1}`, []string{"product_id"}},
		{"ratio_string", `{"name":"A","product_id":42,"discount_ratio":"0.1"}`, []string{"discount_ratio"}},
		{"ratio_bool", `{"name":"A","product_id":42,"discount_ratio":true}`, []string{"discount_ratio"}},
		{"ratio_zero", `{"name":"A","product_id":42,"discount_ratio":0}`, []string{"discount_ratio"}},
		{"ratio_above_one", `{"name":"A","product_id":42,"discount_ratio":1.5}`, []string{"discount_ratio"}},
		{"ratio_seven_places", `{"name":"A","product_id":42,"discount_ratio":0.0000001}`, []string{"discount_ratio"}},
		{"ratio_seven_places_above_one", `{"name":"A","product_id":42,"discount_ratio":1.0000001}`, []string{"discount_ratio"}},
		{"ratio_below_float_precision", `{"name":"A","product_id":42,"discount_ratio":1.0000000000000000001}`, []string{"discount_ratio"}},
		{"ratio_tiny_exponent", `{"name":"A","product_id":42,"discount_ratio":1e-200000000}`, []string{"discount_ratio"}},
		{"ratio_huge_exponent", `{"name":"A","product_id":42,"discount_ratio":1e200000000}`, []string{"discount_ratio"}},
		{"ratio_long_literal", `{"name":"A","product_id":42,"discount_ratio":0.1000000000000000000000000000000000}`, []string{"discount_ratio"}},
		{"name_with_nul", `{"name":"SPRING\u000010","product_id":42,"discount_ratio":0.1}`, []string{"name"}},
		{"every_field_wrong", `{"name":"","product_id":"x","discount_ratio":-1}`, []string{"name", "product_id", "discount_ratio"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := DecodePromotion(v, []byte(tc.body))
			assert.Nil(t, p)
			assert.ElementsMatch(t, tc.fields, fieldNames(t, err))
		})
	}
}

func TestDecodePromotion_RatioLimits(t *testing.T) {
	v := validator.New()

	testCases := []struct {
		name    string
		ratio   string
		message string
	}{
		{"seven_places", "0.0000001", "discount_ratio must have at most 6 decimal places"},
		{"seven_places_above_one", "1.0000001", "discount_ratio must have at most 6 decimal places"},
		{"below_float_precision", "1.0000000000000000001", "discount_ratio must have at most 6 decimal places"},
		{"tiny_exponent", "1e-200000000", "discount_ratio must have at most 6 decimal places"},
		{"huge_exponent", "1e200000000", "discount_ratio must be at most 1"},
		{"zero_huge_exponent", "0e200000000", "discount_ratio must be greater than 0"},
		{"negative_huge_exponent", "-1e200000000", "discount_ratio must be greater than 0"},
		{"just_above_one", "1.000001", "discount_ratio must be at most 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := `{"name":"A","product_id":42,"discount_ratio":` + tc.ratio + `}`

			start := time.Now()
			p, err := DecodePromotion(v, []byte(body))
			elapsed := time.Since(start)

			assert.Nil(t, p)
			require.Error(t, err)
			assert.Equal(t, "invalid promotion: "+tc.message, err.Error())
			assert.Less(t, elapsed, time.Second)
		})
	}
}

func TestDecodePromotion_RatioAtScale(t *testing.T) {
	v := validator.New()

	for _, ratio := range []string{"0.000001", "0.999999", "1.000000", "1e-6", "10e-1"} {
		t.Run(ratio, func(t *testing.T) {
			body := `{"name":"A","product_id":42,"discount_ratio":` + ratio + `}`

			p, err := DecodePromotion(v, []byte(body))
			require.NoError(t, err)
			assert.True(t, p.DiscountRatio.Equal(p.DiscountRatio.Round(RatioScale)), "stored value must not be rounded")
		})
	}
}

func TestDecodePromotion_NotAnObject(t *testing.T) {
	v := validator.New()

	for _, body := range []string{``, `null`, `[]`, `"text"`, `42`, `{"name":`} {
		t.Run(body, func(t *testing.T) {
			_, err := DecodePromotion(v, []byte(body))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Error(), "payload must be a JSON object")
		})
	}
}

func TestValidationError_MessageListsEveryField(t *testing.T) {
	_, err := DecodePromotion(validator.New(), []byte(`{"name":"A"}`))
	require.Error(t, err)
	assert.Equal(t, "invalid promotion: product_id is required; discount_ratio is required", err.Error())
}

func TestApplyPartial(t *testing.T) {
	v := validator.New()
	base := func() *Promotion {
		return &Promotion{
			PromotionID:   5,
			Name:          "SPRING10",
			ProductID:     42,
			DiscountRatio: decimal.RequireFromString("0.1"),
			RedeemedCount: 4,
		}
	}

	t.Run("only_ratio_changes", func(t *testing.T) {
		p := base()
		require.NoError(t, ApplyPartial(v, p, []byte(`{"discount_ratio":0.2}`)))

		assert.Equal(t, "SPRING10", p.Name)
		assert.Equal(t, int64(42), p.ProductID)
		assert.True(t, decimal.RequireFromString("0.2").Equal(p.DiscountRatio))
		assert.Equal(t, 4, p.RedeemedCount)
	})

	t.Run("server_fields_ignored", func(t *testing.T) {
		p := base()
		require.NoError(t, ApplyPartial(v, p, []byte(`{"promotion_id":99,"redeemed_count":100,"name":"NEW"}`)))

		assert.Equal(t, int64(5), p.PromotionID)
		assert.Equal(t, 4, p.RedeemedCount)
		assert.Equal(t, "NEW", p.Name)
	})

	t.Run("empty_object_is_noop", func(t *testing.T) {
		p := base()
		require.NoError(t, ApplyPartial(v, p, []byte(`{}`)))
		assert.Equal(t, base(), p)
	})

	t.Run("present_fields_are_checked", func(t *testing.T) {
		p := base()
		err := ApplyPartial(v, p, []byte(`{"name":"","discount_ratio":2}`))
		assert.ElementsMatch(t, []string{"name", "discount_ratio"}, fieldNames(t, err))
		assert.Equal(t, base(), p, "promotion must be untouched on error")
	})

	t.Run("ratio_limits", func(t *testing.T) {
		for _, body := range []string{`{"discount_ratio":1e-200000000}`, `{"discount_ratio":0.0000001}`} {
			p := base()
			start := time.Now()
			err := ApplyPartial(v, p, []byte(body))

			assert.Equal(t, []string{"discount_ratio"}, fieldNames(t, err))
			assert.Less(t, time.Since(start), time.Second)
			assert.Equal(t, base(), p)
		}
	})

	t.Run("wrong_type", func(t *testing.T) {
		p := base()
		err := ApplyPartial(v, p, []byte(`{"product_id":"abc"}`))
		assert.Equal(t, []string{"product_id"}, fieldNames(t, err))
	})

	t.Run("not_an_object", func(t *testing.T) {
		err := ApplyPartial(v, base(), []byte(`[1,2]`))
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
	})
}

func TestNewPromotionFilter(t *testing.T) {
	t.Run("no_filter", func(t *testing.T) {
		f, err := NewPromotionFilter("", "", "")
		require.NoError(t, err)
		assert.Equal(t, PromotionFilter{}, f)
	})

	t.Run("name_wins", func(t *testing.T) {
		f, err := NewPromotionFilter("SPRING10", "42", "0.1")
		require.NoError(t, err)
		require.NotNil(t, f.Name)
		assert.Equal(t, "SPRING10", *f.Name)
		assert.Nil(t, f.ProductID)
		assert.Nil(t, f.DiscountRatio)
	})

	t.Run("product_id_before_ratio", func(t *testing.T) {
		f, err := NewPromotionFilter("", "42", "0.1")
		require.NoError(t, err)
		require.NotNil(t, f.ProductID)
		assert.Equal(t, int64(42), *f.ProductID)
		assert.Nil(t, f.DiscountRatio)
	})

	t.Run("ratio_only", func(t *testing.T) {
		f, err := NewPromotionFilter("", "", "0.25")
		require.NoError(t, err)
		require.NotNil(t, f.DiscountRatio)
		assert.Equal(t, "0.25", f.DiscountRatio.String())
	})

	t.Run("bad_product_id", func(t *testing.T) {
		_, err := NewPromotionFilter("", "forty-two", "")
		assert.Equal(t, []string{"product_id"}, fieldNames(t, err))
	})

	t.Run("bad_ratio", func(t *testing.T) {
		_, err := NewPromotionFilter("", "", "ten")
		assert.Equal(t, []string{"discount_ratio"}, fieldNames(t, err))
	})

	t.Run("ratio_exponent_out_of_bounds", func(t *testing.T) {
		for _, ratio := range []string{"1e-200000000", "1e200000000"} {
			start := time.Now()
			f, err := NewPromotionFilter("", "", ratio)

			assert.Equal(t, []string{"discount_ratio"}, fieldNames(t, err))
			assert.Nil(t, f.DiscountRatio)
			assert.Less(t, time.Since(start), time.Second)
		}
	})

	t.Run("ratio_literal_too_long", func(t *testing.T) {
		_, err := NewPromotionFilter("", "", "0."+strings.Repeat("1", 64))
		assert.Equal(t, []string{"discount_ratio"}, fieldNames(t, err))
	})

	t.Run("name_with_nul", func(t *testing.T) {
		_, err := NewPromotionFilter("SPRING\x0010", "", "")
		assert.Equal(t, []string{"name"}, fieldNames(t, err))
	})
}
