package recurring

import "errors"

var (
	// ErrRecurringNotFound возвращается, когда постоянная бронь не найдена
	ErrRecurringNotFound = errors.New("recurring.repository: recurring booking not found")

	// ErrDuplicate возвращается, когда (court_id, weekday, start_time) уже занят другой бронью
	ErrDuplicate = errors.New("recurring.repository: recurring booking already exists for court, weekday and time")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("recurring.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("recurring.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("recurring.repository: failed to scan row")
)
