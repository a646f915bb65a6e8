package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型，百位以上对应错误种类（Kind）
// 2. Family标识出错的业务域（ACCOUNT、COMMENT、VOTE...），可为空
// 3. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`
	Family  string `json:"family,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	prefix := fmt.Sprintf("[%d]", e.Code)
	if e.Family != "" {
		prefix = fmt.Sprintf("[%s/%d]", e.Family, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", prefix, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误种类匹配
// 规则：
// 1. target的Code是种类基准码（如40400）时，只比较种类
// 2. 否则要求Code完全相同
// 3. target带Family时还要求Family一致
//
//	errors.Is(err, apperrors.ErrNotFound)                  // 任意业务域的NOT_FOUND
//	errors.Is(err, apperrors.ErrNotFound.In("COMMENT"))    // 只匹配评论的NOT_FOUND
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Family != "" && t.Family != e.Family {
		return false
	}
	if t.Code%100 == 0 {
		return kindOf(t.Code) == kindOf(e.Code)
	}
	return t.Code == e.Code
}

// Kind 返回错误种类
func (e *AppError) Kind() string {
	return kindOf(e.Code)
}

// HTTPStatus 错误码映射为HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch e.Kind() {
	case KindNotAuthenticated:
		return http.StatusUnauthorized
	case KindNotAuthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindValidation:
		if e.Code/100 == 400 {
			return http.StatusBadRequest
		}
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// In 复制一份错误并指定业务域
func (e *AppError) In(family string) *AppError {
	cp := *e
	cp.Family = family
	return &cp
}

// WithMessage 复制一份错误并替换提示信息
func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewIn 创建带业务域的AppError
func NewIn(family string, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Family:  family,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误种类
// =========================================

const (
	KindNotAuthenticated = "NOT_AUTHENTICATED"
	KindNotAuthorized    = "NOT_AUTHORIZED"
	KindNotFound         = "NOT_FOUND"
	KindAlreadyExists    = "ALREADY_EXISTS"
	KindValidation       = "VALIDATION"
	KindInternal         = "INTERNAL"
)

func kindOf(code int) string {
	switch code / 100 {
	case 401:
		return KindNotAuthenticated
	case 403:
		return KindNotAuthorized
	case 404:
		return KindNotFound
	case 409:
		return KindAlreadyExists
	case 400, 422:
		return KindValidation
	default:
		return KindInternal
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 前三位与HTTP状态码一致，决定错误种类
// - 5xxxx: 服务端错误（数据库异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeStorageError  = 50003 // 文件存储错误

	// 认证错误（40100-40199）
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 密码错误

	// 授权错误（40300-40399）
	ErrCodeForbidden = 40300 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound = 40400 // 资源不存在(通用)

	// 唯一性冲突（40900-40999）
	ErrCodeAlreadyExists = 40900 // 记录已存在(通用)

	// 参数错误
	ErrCodeBindError     = 40000 // 参数绑定失败
	ErrCodeInvalidParams = 42200 // 参数校验失败(通用)
	ErrCodeNoExtension   = 42201 // 文件缺少扩展名
	ErrCodeWeakPassword  = 42202 // 密码强度不足
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 种类基准错误，配合errors.Is使用
	ErrNotAuthenticated = New(ErrCodeUnauthorized, "请先登录")
	ErrNotAuthorized    = New(ErrCodeForbidden, "无权限访问")
	ErrNotFound         = New(ErrCodeNotFound, "资源不存在")
	ErrAlreadyExists    = New(ErrCodeAlreadyExists, "记录已存在")
	ErrValidation       = New(ErrCodeInvalidParams, "参数错误")

	// 认证
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "密码错误")

	// 参数错误
	ErrBindError = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// Kind 返回任意错误的种类，非AppError一律视为INTERNAL
func Kind(err error) string {
	if err == nil {
		return ""
	}
	return GetAppError(err).Kind()
}
