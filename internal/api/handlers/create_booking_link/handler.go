package create_booking_link

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WebhookService/internal/api/handlers"
	"github.com/m04kA/SMC-WebhookService/internal/api/middleware"
	uc "github.com/m04kA/SMC-WebhookService/internal/usecase/create_booking_link"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnauthorized       = "требуется аутентификация"
	msgProviderFailure    = "провайдер временно недоступен, попробуйте позже"
)

type Handler struct {
	usecase Usecase
	logger  Logger
}

func NewHandler(usecase Usecase, logger Logger) *Handler {
	return &Handler{
		usecase: usecase,
		logger:  logger,
	}
}

// Handle POST /api/v1/booking-links
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clientID, ok := middleware.UserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateBookingLinkRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /booking-links - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.usecase.Execute(r.Context(), req.ToUsecaseRequest(clientID))
	if err != nil {
		switch {
		case errors.Is(err, uc.ErrValidation):
			h.logger.Warn("POST /booking-links - Validation failed: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, uc.ErrSchedulingLinkFailed), errors.Is(err, uc.ErrCheckoutFailed):
			h.logger.Error("POST /booking-links - Provider failure: %v", err)
			handlers.RespondServiceUnavailable(w, msgProviderFailure)

		default:
			h.logger.Error("POST /booking-links - Failed to create booking link: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /booking-links - Link issued: correlation_key=%s, client_id=%d",
		result.CorrelationKey, clientID)
	handlers.RespondJSON(w, http.StatusCreated, CreateBookingLinkResponse{
		CorrelationKey:    result.CorrelationKey,
		SchedulingURL:     result.SchedulingURL,
		CheckoutURL:       result.CheckoutURL,
		CheckoutSessionID: result.CheckoutSessionID,
	})
}
