package bookings

import "errors"

var (
	// ErrValidation возвращается при невалидных параметрах запроса
	ErrValidation = errors.New("bookings: validation failed")

	// ErrBookingNotFound возвращается, когда бронирование не существует
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrPermissionDenied возвращается при попытке доступа к чужому бронированию
	ErrPermissionDenied = errors.New("bookings: permission denied")

	// ErrAlreadyCancelled возвращается при повторной отмене
	ErrAlreadyCancelled = errors.New("bookings: booking already cancelled")

	// ErrInternal возвращается при ошибках хранилища или транзакции
	ErrInternal = errors.New("bookings: internal error")
)
