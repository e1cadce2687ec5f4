package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrStateConflict возвращается, когда условная запись не затронула ни одной строки:
	// слот не в допустимом исходном статусе или не прошел одну из проверок
	ErrStateConflict = errors.New("slot.repository: slot state does not allow the transition")

	// ErrConcurrentUpdate возвращается при конфликте сериализуемых транзакций
	ErrConcurrentUpdate = errors.New("slot.repository: concurrent update")

	// ErrUnknownEvent возвращается для события, которого нет в таблице переходов
	ErrUnknownEvent = errors.New("slot.repository: unknown slot event")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
