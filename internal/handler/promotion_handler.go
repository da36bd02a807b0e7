package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/promotion-service/internal/model"
	"github.com/fairyhunter13/promotion-service/internal/service"
)

// PromotionServiceInterface defines the interface for promotion business logic.
type PromotionServiceInterface interface {
	List(ctx context.Context, filter model.PromotionFilter) ([]model.Promotion, error)
	Get(ctx context.Context, id int64) (*model.Promotion, error)
	Create(ctx context.Context, p *model.Promotion) error
	Update(ctx context.Context, id int64, p *model.Promotion) error
	Delete(ctx context.Context, id int64) error
	Redeem(ctx context.Context, id int64) (*model.Promotion, error)
	RemoveAll(ctx context.Context) error
}

// PromotionHandler handles HTTP requests for promotion operations.
type PromotionHandler struct {
	service   PromotionServiceInterface
	validator *validator.Validate
}

// NewPromotionHandler creates a new PromotionHandler with the given service and validator.
func NewPromotionHandler(svc PromotionServiceInterface, v *validator.Validate) *PromotionHandler {
	return &PromotionHandler{service: svc, validator: v}
}

// RegisterRoutes mounts the promotion endpoints on router.
// /promotions/reset is registered before the id routes; ids must be integers.
func (h *PromotionHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/promotions", h.ListPromotions)
	router.Post("/promotions", h.CreatePromotion)
	router.Delete("/promotions/reset", h.ResetPromotions)
	router.Get("/promotions/:id<int>", h.GetPromotion)
	router.Put("/promotions/:id<int>", h.UpdatePromotion)
	router.Delete("/promotions/:id<int>", h.DeletePromotion)
	router.Post("/promotions/:id<int>/redeem", h.RedeemPromotion)
}

func promotionID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusNotFound, "promotion_id must be an integer")
	}
	return id, nil
}

func notFound(err error, id int64) error {
	if errors.Is(err, service.ErrPromotionNotFound) {
		return fmt.Errorf("promotion with id '%d' was not found: %w", id, service.ErrPromotionNotFound)
	}
	return err
}

// requireJSON rejects requests whose media type is not application/json.
// Parameters such as charset are ignored.
func requireJSON(c *fiber.Ctx) error {
	contentType := c.Get(fiber.HeaderContentType)
	mediaType, _, _ := strings.Cut(contentType, ";")
	if strings.EqualFold(strings.TrimSpace(mediaType), fiber.MIMEApplicationJSON) {
		return nil
	}
	log.Error().Str("content_type", contentType).Msg("invalid Content-Type")
	return fiber.NewError(fiber.StatusUnsupportedMediaType, "Content-Type must be "+fiber.MIMEApplicationJSON)
}

func location(c *fiber.Ctx, id int64) string {
	return c.BaseURL() + "/promotions/" + strconv.FormatInt(id, 10)
}

// ListPromotions handles GET /promotions, optionally filtered by one of
// name, product_id or discount_ratio (in that precedence).
func (h *PromotionHandler) ListPromotions(c *fiber.Ctx) error {
	filter, err := model.NewPromotionFilter(c.Query("name"), c.Query("product_id"), c.Query("discount_ratio"))
	if err != nil {
		return err
	}

	promotions, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	if promotions == nil {
		promotions = []model.Promotion{}
	}
	return c.Status(fiber.StatusOK).JSON(promotions)
}

// GetPromotion handles GET /promotions/:id.
func (h *PromotionHandler) GetPromotion(c *fiber.Ctx) error {
	id, err := promotionID(c)
	if err != nil {
		return err
	}

	p, err := h.service.Get(c.Context(), id)
	if err != nil {
		return notFound(err, id)
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

// CreatePromotion handles POST /promotions.
// Responds 201 with the stored promotion and a Location header.
func (h *PromotionHandler) CreatePromotion(c *fiber.Ctx) error {
	if err := requireJSON(c); err != nil {
		return err
	}

	p, err := model.DecodePromotion(h.validator, c.Body())
	if err != nil {
		return err
	}

	if err := h.service.Create(c.Context(), p); err != nil {
		return err
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Int64("promotion_id", p.PromotionID).
		Str("name", p.Name).
		Msg("promotion created")

	c.Location(location(c, p.PromotionID))
	return c.Status(fiber.StatusCreated).JSON(p)
}

// UpdatePromotion handles PUT /promotions/:id.
// Only the fields present in the body change; the path id always wins.
func (h *PromotionHandler) UpdatePromotion(c *fiber.Ctx) error {
	if err := requireJSON(c); err != nil {
		return err
	}

	id, err := promotionID(c)
	if err != nil {
		return err
	}

	p, err := h.service.Get(c.Context(), id)
	if err != nil {
		return notFound(err, id)
	}

	if err := model.ApplyPartial(h.validator, p, c.Body()); err != nil {
		return err
	}

	if err := h.service.Update(c.Context(), id, p); err != nil {
		return notFound(err, id)
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

// DeletePromotion handles DELETE /promotions/:id. It is idempotent.
func (h *PromotionHandler) DeletePromotion(c *fiber.Ctx) error {
	id, err := promotionID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

// RedeemPromotion handles POST /promotions/:id/redeem.
func (h *PromotionHandler) RedeemPromotion(c *fiber.Ctx) error {
	id, err := promotionID(c)
	if err != nil {
		return err
	}

	p, err := h.service.Redeem(c.Context(), id)
	if err != nil {
		return notFound(err, id)
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Int64("promotion_id", p.PromotionID).
		Int("redeemed_count", p.RedeemedCount).
		Msg("promotion redeemed")

	return c.Status(fiber.StatusOK).JSON(p)
}

// ResetPromotions handles DELETE /promotions/reset, removing every promotion.
// Intended for test environments.
func (h *PromotionHandler) ResetPromotions(c *fiber.Ctx) error {
	if err := h.service.RemoveAll(c.Context()); err != nil {
		return err
	}
	log.Warn().Msg("all promotions removed")
	return c.Status(fiber.StatusNoContent).Send(nil)
}
