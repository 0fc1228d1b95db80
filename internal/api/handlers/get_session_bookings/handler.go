package get_session_bookings

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WebhookService/internal/api/handlers"
	"github.com/m04kA/SMC-WebhookService/internal/domain"
	"github.com/m04kA/SMC-WebhookService/internal/service/bookings/models"
)

const (
	msgInvalidSessionTypeID = "некорректный ID типа сессии"
	msgInvalidStatus        = "некорректный статус бронирования"
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

// Handle GET /api/v1/session-types/{sessionTypeId}/bookings?status=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionTypeID, err := strconv.ParseInt(vars["sessionTypeId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /session-types/{id}/bookings - Invalid session type ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSessionTypeID)
		return
	}

	status, ok := parseStatus(r.URL.Query().Get("status"))
	if !ok {
		handlers.RespondBadRequest(w, msgInvalidStatus)
		return
	}

	list, err := h.service.GetSessionBookings(r.Context(), sessionTypeID, status)
	if err != nil {
		h.logger.Error("GET /session-types/{id}/bookings - Failed to get bookings: session_type_id=%d, error=%v",
			sessionTypeID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /session-types/{id}/bookings - Bookings retrieved: session_type_id=%d, count=%d",
		sessionTypeID, len(list))
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
