package response

import "errors"

// AppError BFF 自身接口（健康检查、审计查询）的信封错误，Code 写入 status_code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError 创建不带底层错误的信封错误
func NewError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// WrapError 包装底层错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// AsAppError 从错误链中取出 AppError，取不到时按内部错误处理
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return WrapError(CodeInternal, MsgInternalServerError, err)
}
