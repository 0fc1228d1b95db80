package delivery

import "errors"

var (
	// ErrAlreadyRecorded возвращается при повторной записи той же доставки:
	// параллельная обработка уже зафиксировала результат
	ErrAlreadyRecorded = errors.New("delivery.repository: delivery already recorded")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("delivery.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("delivery.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("delivery.repository: failed to scan row")
)
