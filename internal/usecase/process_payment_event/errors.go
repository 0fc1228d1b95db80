package process_payment_event

import "errors"

var (
	// ErrValidation возвращается при событии, которое этот usecase не умеет применять
	ErrValidation = errors.New("process_payment_event: invalid event")

	// ErrInternal возвращается при ошибках хранилища или транзакции.
	// Обработчик отвечает 503, провайдер повторит доставку.
	ErrInternal = errors.New("process_payment_event: internal error")
)
