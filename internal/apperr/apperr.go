package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误分类，决定 HTTP 状态码
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindExternalService
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindExternalService:
		return "external_service"
	case KindStore:
		return "store"
	}
	return "unknown"
}

// 对外错误码
const (
	CodeInvalidField            = "ERROR_400_INVALID_FIELD"
	CodeTaskNotFound            = "TASK_NOT_FOUND"
	CodeContactNotFound         = "CONTACT_NOT_FOUND"
	CodeExternalContactNotFound = "DEALOGIC_CONTACT_NOT_FOUND"
	CodeAlreadyImported         = "DEALOGIC_CONTACT_ALREADY_IMPORTED"
	CodeExternalService         = "EXTERNAL_SERVICE_ERROR"
	CodeStore                   = "STORE_ERROR"
)

type Error struct {
	Kind  Kind
	Code  string
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Code, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation 请求参数非法，field 为出错字段
func Validation(field string, err error) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidField, Field: field, Err: err}
}

func NotFound(code string, err error) *Error {
	return &Error{Kind: KindNotFound, Code: code, Err: err}
}

// External 目录/映射服务不可用或返回非成功
func External(err error) *Error {
	return &Error{Kind: KindExternalService, Code: CodeExternalService, Err: err}
}

func Store(err error) *Error {
	return &Error{Kind: KindStore, Code: CodeStore, Err: err}
}

// As 取出链上的 *Error
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
