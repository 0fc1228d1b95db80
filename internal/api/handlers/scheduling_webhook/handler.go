package scheduling_webhook

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-WebhookService/internal/api/handlers"
	"github.com/m04kA/SMC-WebhookService/internal/normalizer"
	"github.com/m04kA/SMC-WebhookService/internal/usecase/process_scheduling_event"
	"github.com/m04kA/SMC-WebhookService/pkg/webhooksig"
)

const (
	// signatureHeader заголовок подписи scheduling-провайдера
	signatureHeader = "Calendly-Webhook-Signature"

	// maxBodySize лимит тела webhook-запроса
	maxBodySize = 1 << 20

	msgInvalidSignature = "некорректная подпись запроса"
	msgInvalidPayload   = "некорректное тело события"
	msgTemporaryFailure = "временная ошибка, доставка будет повторена"
)

type Handler struct {
	normalizer Normalizer
	usecase    Usecase
	logger     Logger

	secret    string
	tolerance time.Duration
}

func NewHandler(n Normalizer, uc Usecase, logger Logger, secret string, tolerance time.Duration) *Handler {
	return &Handler{
		normalizer: n,
		usecase:    uc,
		logger:     logger,
		secret:     secret,
		tolerance:  tolerance,
	}
}

// Handle POST /webhooks/scheduling
//
// Подпись проверяется по сырым байтам тела до JSON-парсинга.
// 401 при плохой подписи, 400 при нечитаемом payload, 503 при временной
// ошибке (провайдер повторит доставку), 200 когда доставка подтверждена.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.logger.Warn("POST /webhooks/scheduling - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}
	defer r.Body.Close()

	if err := webhooksig.Verify(body, r.Header.Get(signatureHeader), h.secret, webhooksig.Options{Tolerance: h.tolerance}); err != nil {
		h.logger.Warn("POST /webhooks/scheduling - Signature verification failed: %v", err)
		handlers.RespondUnauthorized(w, msgInvalidSignature)
		return
	}

	ev, err := h.normalizer.NormalizeScheduling(body)
	if err != nil {
		if errors.Is(err, normalizer.ErrMalformedPayload) || errors.Is(err, normalizer.ErrValidation) {
			h.logger.Warn("POST /webhooks/scheduling - Malformed payload: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPayload)
			return
		}
		h.logger.Error("POST /webhooks/scheduling - Failed to normalize event: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	result, err := h.usecase.Execute(r.Context(), ev)
	if err != nil {
		if errors.Is(err, process_scheduling_event.ErrValidation) {
			h.logger.Warn("POST /webhooks/scheduling - Invalid event: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPayload)
			return
		}
		// Ошибка хранилища: отвечаем 503, чтобы провайдер повторил доставку
		h.logger.Error("POST /webhooks/scheduling - Failed to process delivery=%s: %v", ev.DeliveryID, err)
		handlers.RespondServiceUnavailable(w, msgTemporaryFailure)
		return
	}

	h.logger.Info("POST /webhooks/scheduling - Delivery=%s type=%s outcome=%s",
		ev.DeliveryID, ev.RawEventType, result.Outcome)
	handlers.RespondJSON(w, http.StatusOK, AckResponse{
		Status:    string(result.Outcome),
		BookingID: result.BookingID,
	})
}
