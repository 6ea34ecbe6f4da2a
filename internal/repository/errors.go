package repository

import (
	"errors"

	"irma-verse/pkg/apperr"

	"gorm.io/gorm"
)

// translate 将gorm错误转换为业务错误分类
func translate(err error, notFoundMsg, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(err, apperr.KindNotFound, notFoundMsg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(err, apperr.KindConflict, conflictMsg)
	default:
		return apperr.Internal(err, "")
	}
}
