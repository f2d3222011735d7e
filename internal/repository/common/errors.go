package common

import (
	"errors"

	"github.com/lib/pq"
)

// Коды ошибок PostgreSQL, которые разбираются репозиториями.
const (
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
	pqForeignKeyViolation = "23503"
)

// UniqueViolation возвращает имя нарушенного ограничения уникальности.
func UniqueViolation(err error) (string, bool) {
	return violation(err, pqUniqueViolation)
}

// CheckViolation возвращает имя нарушенного CHECK ограничения.
func CheckViolation(err error) (string, bool) {
	return violation(err, pqCheckViolation)
}

// IsForeignKeyViolation сообщает о ссылке на несуществующую запись.
func IsForeignKeyViolation(err error) bool {
	_, ok := violation(err, pqForeignKeyViolation)
	return ok
}

func violation(err error, code pq.ErrorCode) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != code {
		return "", false
	}
	return pqErr.Constraint, true
}
