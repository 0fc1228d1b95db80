package refunds

import "errors"

var (
	// ErrNoPaymentReference возвращается, когда у бронирования нет
	// сохраненного payment intent: возврат невозможен без ручной сверки
	ErrNoPaymentReference = errors.New("refunds: booking has no payment reference")

	// ErrRefundFailed возвращается при ошибке платежного провайдера.
	// Отмена бронирования при этом НЕ откатывается: бронирование остается
	// cancelled/paid до ручной сверки оператором.
	ErrRefundFailed = errors.New("refunds: provider refund failed")
)
