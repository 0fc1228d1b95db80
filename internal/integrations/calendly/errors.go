package calendly

import "errors"

var (
	// ErrNotFound возвращается, когда ресурс не найден у провайдера
	ErrNotFound = errors.New("calendly client: resource not found")

	// ErrUnauthorized возвращается при невалидном API-токене
	ErrUnauthorized = errors.New("calendly client: unauthorized")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("calendly client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе провайдера
	ErrInvalidResponse = errors.New("calendly client: invalid response")
)
