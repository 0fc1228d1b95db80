package normalizer

import "errors"

var (
	// ErrValidation возвращается, когда обрабатываемый тип события
	// не содержит обязательных полей. Такое событие невозможно
	// автоматически скоррелировать с бронированием: отдаем 400,
	// не глотаем молча.
	ErrValidation = errors.New("normalizer: payload validation failed")

	// ErrMalformedPayload возвращается при нечитаемом JSON
	ErrMalformedPayload = errors.New("normalizer: malformed payload")
)
