package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 领域错误，由 handlers 映射为 HTTP 状态码
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrValidation       = errors.New("validation failed")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// isDuplicate 唯一约束冲突是并发重复插入的唯一判定依据
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
