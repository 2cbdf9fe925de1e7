package service

import (
	"errors"
	"fmt"
)

// 结账与会话相关错误
var (
	ErrValidationBlocked      = errors.New("checkout is not ready: select books and accept both agreements")
	ErrAuthenticationRequired = errors.New("you are not authenticated, please log in first")
	ErrPersistenceRead        = errors.New("persisted client state is unreadable")
	ErrInvalidDuration        = errors.New("borrow duration must be 3, 5 or 10 days")
	ErrCheckoutNotIdle        = errors.New("checkout is not idle")
	ErrEmptySelection         = errors.New("no books selected")
	ErrLoginFailed            = errors.New("login failed: invalid response")
	ErrRegisterFailed         = errors.New("registration failed: invalid response")
	ErrStoreUnavailable       = errors.New("client store is not initialized")
)

// defaultBorrowFailedMessage 无法提取任何信息时的兜底文案
const defaultBorrowFailedMessage = "Borrowing failed."

// ItemSubmissionFailedError 某一条借阅被后端拒绝
type ItemSubmissionFailedError struct {
	Index   int
	BookID  int
	Message string
}

func (e *ItemSubmissionFailedError) Error() string {
	return fmt.Sprintf("loan %d (book %d) rejected: %s", e.Index+1, e.BookID, e.Message)
}

// TransportError 某一条借阅未拿到可解析的响应
type TransportError struct {
	Index   int
	BookID  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("loan %d (book %d) transport failed: %s", e.Index+1, e.BookID, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FieldErrors 表单校验错误，键为字段 JSON 名
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	for _, key := range []string{"name", "email", "handphone", "password", "confirmPassword"} {
		if msg, ok := e[key]; ok {
			return msg
		}
	}
	for _, msg := range e {
		return msg
	}
	return "invalid form"
}

// UserMessage 返回面向用户的错误文案
func UserMessage(err error) string {
	var itemErr *ItemSubmissionFailedError
	if errors.As(err, &itemErr) {
		return itemErr.Message
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
