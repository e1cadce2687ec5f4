package domain

import "errors"

// Категории ошибок. Пакеты объявляют собственные sentinel-ошибки,
// оборачивающие одну из категорий, а HTTP слой маппит категории на статус-коды.
var (
	// ErrValidation некорректные входные данные, отклоняется до любых изменений
	ErrValidation = errors.New("validation error")

	// ErrConflict состояние не позволяет выполнить операцию; клиент должен перечитать данные
	ErrConflict = errors.New("conflict")

	// ErrNotFound сущность не найдена
	ErrNotFound = errors.New("not found")

	// ErrForbidden у актора нет прав на изменение сущности
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited превышен лимит попыток бронирования
	ErrRateLimited = errors.New("rate limited")
)
