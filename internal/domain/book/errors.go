package book

import (
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrNotFound 图书不存在
	ErrNotFound = apperrors.ErrNotFound.In(Family).WithMessage("图书不存在")

	// ErrNameRequired 书名为空
	ErrNameRequired = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "书名不能为空")

	// ErrInvalidEdition 无效的版次
	ErrInvalidEdition = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "版次必须大于0")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "价格不能为负数")

	// ErrIssuerRequired 缺少出版社
	ErrIssuerRequired = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "出版社不能为空")
)
