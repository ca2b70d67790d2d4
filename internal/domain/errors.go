package domain

import "errors"

// Таксономия ошибок ядра. Репозитории и сервисы оборачивают свои ошибки
// в эти значения, хендлеры сопоставляют их с HTTP статусами.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	ErrInsufficientSpace = errors.New("not enough storage space")
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnavailable       = errors.New("unable to generate unique filename")
)
