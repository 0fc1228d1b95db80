package create_booking_link

import "errors"

var (
	// ErrValidation возвращается при невалидных данных запроса
	ErrValidation = errors.New("create_booking_link: validation failed")

	// ErrSchedulingLinkFailed возвращается при ошибке scheduling-провайдера
	ErrSchedulingLinkFailed = errors.New("create_booking_link: failed to create scheduling link")

	// ErrCheckoutFailed возвращается при ошибке платежного провайдера
	ErrCheckoutFailed = errors.New("create_booking_link: failed to create checkout session")
)
