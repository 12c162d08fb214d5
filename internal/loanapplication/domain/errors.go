package domain

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind int

const (
	KindUpstream Kind = iota
	KindBadRequest
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	default:
		return "UPSTREAM"
	}
}

// 错误码
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeNotFound     = "NOT_FOUND"
	CodeLoanPending  = "LOAN_PENDING"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeUpstream     = "INTERNAL_ERROR"
)

// Error 带分类的业务错误
type Error struct {
	Kind    Kind
	Code    string
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

func newError(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// BadRequest 输入格式错误或越界
func BadRequest(format string, args ...any) *Error {
	return newError(KindBadRequest, CodeBadRequest, format, args...)
}

// NotFound 资源不存在
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, CodeNotFound, format, args...)
}

// LoanPending 已存在待审核申请
func LoanPending(email string) *Error {
	return newError(KindConflict, CodeLoanPending, "a pending loan application already exists for %s", email)
}

// Unauthorized 身份不匹配
func Unauthorized(format string, args ...any) *Error {
	return newError(KindUnauthorized, CodeUnauthorized, format, args...)
}

// Forbidden 无权访问
func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, CodeForbidden, format, args...)
}

// Upstream 包装协作方错误；已分类的错误保持原分类
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindUpstream, Code: CodeUpstream, Message: op, Err: err}
}

// KindOf 返回错误分类，未分类错误视为 Upstream
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUpstream
}

// CodeOf 返回错误码
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != "" {
		return de.Code
	}
	return CodeUpstream
}
