package stripepay

import "errors"

var (
	// ErrCheckoutFailed возвращается при ошибке создания checkout-сессии
	ErrCheckoutFailed = errors.New("stripepay client: failed to create checkout session")

	// ErrRefundFailed возвращается при ошибке создания возврата
	ErrRefundFailed = errors.New("stripepay client: failed to create refund")
)
