package payment_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/m04kA/SMC-WebhookService/internal/api/handlers"
	"github.com/m04kA/SMC-WebhookService/internal/normalizer"
	"github.com/m04kA/SMC-WebhookService/internal/usecase/process_payment_event"
)

const (
	// signatureHeader заголовок подписи платежного провайдера
	signatureHeader = "Stripe-Signature"

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

	secret string
}

func NewHandler(n Normalizer, uc Usecase, logger Logger, secret string) *Handler {
	return &Handler{
		normalizer: n,
		usecase:    uc,
		logger:     logger,
		secret:     secret,
	}
}

// Handle POST /webhooks/payment
//
// Подпись проверяется SDK провайдера по сырым байтам тела.
// Коды ответов те же, что и у scheduling-webhook: 401/400/503/200.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.logger.Warn("POST /webhooks/payment - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}
	defer r.Body.Close()

	event, err := webhook.ConstructEvent(body, r.Header.Get(signatureHeader), h.secret)
	if err != nil {
		h.logger.Warn("POST /webhooks/payment - Signature verification failed: %v", err)
		handlers.RespondUnauthorized(w, msgInvalidSignature)
		return
	}

	ev, err := h.normalizer.NormalizePayment(event)
	if err != nil {
		if errors.Is(err, normalizer.ErrMalformedPayload) || errors.Is(err, normalizer.ErrValidation) {
			h.logger.Warn("POST /webhooks/payment - Malformed payload event=%s: %v", event.ID, err)
			handlers.RespondBadRequest(w, msgInvalidPayload)
			return
		}
		h.logger.Error("POST /webhooks/payment - Failed to normalize event=%s: %v", event.ID, err)
		handlers.RespondInternalError(w)
		return
	}

	result, err := h.usecase.Execute(r.Context(), ev)
	if err != nil {
		if errors.Is(err, process_payment_event.ErrValidation) {
			h.logger.Warn("POST /webhooks/payment - Invalid event=%s: %v", event.ID, err)
			handlers.RespondBadRequest(w, msgInvalidPayload)
			return
		}
		// Ошибка хранилища: отвечаем 503, чтобы провайдер повторил доставку
		h.logger.Error("POST /webhooks/payment - Failed to process delivery=%s: %v", ev.DeliveryID, err)
		handlers.RespondServiceUnavailable(w, msgTemporaryFailure)
		return
	}

	h.logger.Info("POST /webhooks/payment - Delivery=%s type=%s outcome=%s",
		ev.DeliveryID, ev.RawEventType, result.Outcome)
	handlers.RespondJSON(w, http.StatusOK, AckResponse{
		Status:    string(result.Outcome),
		BookingID: result.BookingID,
	})
}
