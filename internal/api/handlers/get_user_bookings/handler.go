package get_user_bookings

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WebhookService/internal/api/handlers"
	"github.com/m04kA/SMC-WebhookService/internal/api/middleware"
	"github.com/m04kA/SMC-WebhookService/internal/domain"
	"github.com/m04kA/SMC-WebhookService/internal/service/bookings/models"
)

const (
	msgInvalidUserID = "некорректный ID пользователя"
	msgInvalidStatus = "некорректный статус бронирования"
	msgUnauthorized  = "требуется аутентификация"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/users/{userId}/bookings?status=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	authUserID, ok := middleware.UserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	vars := mux.Vars(r)
	userID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /users/{userId}/bookings - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	// Историю бронирований видит только сам пользователь
	if userID != authUserID {
		h.logger.Warn("GET /users/{userId}/bookings - Permission denied: user_id=%d, auth_user_id=%d",
			userID, authUserID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	status, ok := parseStatus(r.URL.Query().Get("status"))
	if !ok {
		handlers.RespondBadRequest(w, msgInvalidStatus)
		return
	}

	list, err := h.service.GetUserBookings(r.Context(), userID, status)
	if err != nil {
		h.logger.Error("GET /users/{userId}/bookings - Failed to get bookings: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /users/{userId}/bookings - Bookings retrieved: user_id=%d, count=%d", userID, len(list))
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainList(list))
}

func parseStatus(raw string) (*domain.BookingStatus, bool) {
	if raw == "" {
		return nil, true
	}

	status := domain.BookingStatus(raw)
	switch status {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusCancelled:
		return &status, true
	default:
		return nil, false
	}
}
