package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类，handler 层据此映射 HTTP 状态码
type Kind int

const (
	KindInternal     Kind = iota // 内部错误 -> 500
	KindValidation               // 参数错误 -> 400
	KindNotFound                 // 资源不存在或无权访问 -> 404
	KindUnauthorized             // 未认证 -> 401
	KindForbidden                // 角色不符 -> 403
	KindConflict                 // 状态机冲突 -> 409
)

// Error 业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation 参数校验错误
func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound 资源不存在错误
// 资源存在但不属于请求者时同样返回此错误，避免泄露资源存在性
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized 认证失败错误
func Unauthorized(format string, args ...interface{}) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Forbidden 权限不足错误
func Forbidden(format string, args ...interface{}) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Conflict 状态冲突错误
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal 包装底层存储错误
func Internal(message string, err error) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf 提取错误分类，非业务错误一律按内部错误处理
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsNotFound 判断是否资源不存在错误
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsConflict 判断是否状态冲突错误
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// IsForbidden 判断是否权限不足错误
func IsForbidden(err error) bool {
	return KindOf(err) == KindForbidden
}

// IsValidation 判断是否参数校验错误
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// HTTPStatus 错误分类到 HTTP 状态码的映射
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message 提取对外展示的错误消息，内部错误不向外泄露细节
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal {
			return "服务器内部错误"
		}
		return e.Message
	}
	return "服务器内部错误"
}
