package database

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)

// IsNotFound сообщает, что запись не найдена, в том числе сквозь обёртки
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
