package repository

import (
	"errors"

	"github.com/lib/pq"

	"velodrive/internal/domain"
)

const uniqueViolationCode = "23505"

// translateUnique превращает нарушение уникального ограничения в ErrConflict.
// Гонка двух вставок по одной локации должна давать тот же исход,
// что и предварительная проверка имени.
func translateUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return domain.ErrConflict
	}
	return err
}
