package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/promotion-service/internal/model"
	"github.com/fairyhunter13/promotion-service/internal/service"
)

// ErrorResponse is the JSON envelope of every error response.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// reasonPhrases overrides the standard status text where the API uses its own wording.
var reasonPhrases = map[int]string{
	fiber.StatusBadRequest:           "Bad Request",
	fiber.StatusNotFound:             "Not Found",
	fiber.StatusMethodNotAllowed:     "Method not Allowed",
	fiber.StatusUnsupportedMediaType: "Unsupported media type",
	fiber.StatusInternalServerError:  "Internal Server Error",
}

// errorStatuses maps domain sentinel errors to HTTP status codes.
var errorStatuses = map[error]int{
	service.ErrPromotionNotFound: fiber.StatusNotFound,
	service.ErrInvalidPromotion:  fiber.StatusBadRequest,
}

func reasonPhrase(status int) string {
	if phrase, ok := reasonPhrases[status]; ok {
		return phrase
	}
	return utils.StatusMessage(status)
}

// classify returns the status code and client-facing message for err.
func classify(err error) (int, string) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return fiber.StatusBadRequest, verr.Error()
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	for target, status := range errorStatuses {
		if errors.Is(err, target) {
			return status, err.Error()
		}
	}

	return fiber.StatusInternalServerError, "internal server error"
}

// ErrorHandler renders every error returned by a handler, or raised by fiber
// itself (unknown route, wrong method, recovered panic), as an ErrorResponse.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, message := classify(err)

	if status >= fiber.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Msg("request failed")
	} else {
		log.Info().
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Msg(message)
	}

	return c.Status(status).JSON(ErrorResponse{
		Status:  status,
		Error:   reasonPhrase(status),
		Message: message,
	})
}
