package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误类别，handler层据此映射HTTP状态码
type Kind string

const (
	KindValidation    Kind = "validation"     // 参数缺失/非法 → 400
	KindAuthorization Kind = "authorization"  // 角色不允许 → 403
	KindNotFound      Kind = "not_found"      // 实体不存在或不属于本组织 → 404
	KindStateConflict Kind = "state_conflict" // 状态机守卫不满足 → 409
	KindIntegrity     Kind = "integrity"      // 数据完整性破坏（如报价缺行）→ 409
	KindUnexpected    Kind = "unexpected"     // 存储/连接故障 → 500
)

// Error 业务错误，kind与用户可见message分离
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

func Authorization(message string, err error) *Error {
	return &Error{Kind: KindAuthorization, Message: message, Err: err}
}

func NotFound(message string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: err}
}

func StateConflict(message string, err error) *Error {
	return &Error{Kind: KindStateConflict, Message: message, Err: err}
}

func Integrity(message string, err error) *Error {
	return &Error{Kind: KindIntegrity, Message: message, Err: err}
}

func Unexpected(message string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: message, Err: err}
}

// KindOf 提取错误类别，非业务错误一律视为unexpected
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// MessageOf 提取用户可见消息
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}
