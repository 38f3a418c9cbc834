// Package errors 애플리케이션 전용 에러 처리 시스템을 제공합니다.
//
// 표준 errors 패키지를 확장하여 타입 기반 에러 분류와 에러 체이닝을 지원합니다.
// 모든 에러는 ErrorType으로 분류되며, Wrap 함수를 통해 컨텍스트를 누적할 수 있습니다.
//
// 기본 사용법:
//
//	err := errors.New(errors.NotFound, "기관 설정을 찾을 수 없습니다")
//
//	if err != nil {
//	    return errors.Wrap(err, errors.System, "데이터베이스 조회 실패")
//	}
//
//	if errors.Is(err, errors.Unavailable) {
//	    // 재시도 가능한 에러 처리
//	}
package errors

import (
	"errors"
	"fmt"
)

// AppError 애플리케이션에서 발생하는 모든 에러를 표준화하여 표현하는 구조체입니다.
type AppError struct {
	errType ErrorType    // 에러의 종류
	message string       // 사용자에게 보여줄 메시지
	cause   error        // 이 에러가 발생하게 된 근본 원인 (에러 체이닝)
	stack   []StackFrame // 에러 발생 시점의 함수 호출 스택 정보
}

// Type 에러의 타입을 반환합니다.
func (e *AppError) Type() ErrorType {
	return e.errType
}

// Message 에러 메시지를 반환합니다.
func (e *AppError) Message() string {
	return e.message
}

// Stack 스택 트레이스를 반환합니다.
func (e *AppError) Stack() []StackFrame {
	return e.stack
}

// Error 표준 error 인터페이스를 구현합니다.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.errType, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.errType, e.message)
}

// Unwrap 표준 errors.Unwrap 인터페이스를 구현합니다.
func (e *AppError) Unwrap() error {
	return e.cause
}

// New 지정된 타입과 메시지로 새로운 AppError를 생성합니다.
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		errType: errType,
		message: message,
		stack:   captureStack(1),
	}
}

// Newf 지정된 타입과 포맷 문자열로 새로운 AppError를 생성합니다.
func Newf(errType ErrorType, format string, args ...any) *AppError {
	return &AppError{
		errType: errType,
		message: fmt.Sprintf(format, args...),
		stack:   captureStack(1),
	}
}

// Wrap 기존 에러를 새로운 타입과 메시지로 감쌉니다.
// cause가 nil이면 nil을 반환하므로, 에러 전파 경로에서 nil 체크 없이 사용할 수 있습니다.
func Wrap(cause error, errType ErrorType, message string) error {
	if cause == nil {
		return nil
	}
	return &AppError{
		errType: errType,
		message: message,
		cause:   cause,
		stack:   captureStack(1),
	}
}

// Wrapf 기존 에러를 새로운 타입과 포맷 문자열로 감쌉니다.
func Wrapf(cause error, errType ErrorType, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return &AppError{
		errType: errType,
		message: fmt.Sprintf(format, args...),
		cause:   cause,
		stack:   captureStack(1),
	}
}

// Is 에러 체인에 지정된 타입의 AppError가 포함되어 있는지 검사합니다.
//
// 체인의 가장 바깥쪽 AppError의 타입만 검사하는 것이 아니라,
// Unwrap을 따라가며 체인 전체에서 해당 타입을 탐색합니다.
func Is(err error, errType ErrorType) bool {
	for err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) {
			if appErr.errType == errType {
				return true
			}
			err = appErr.cause
			continue
		}
		return false
	}
	return false
}

// TypeOf 에러 체인의 가장 바깥쪽 AppError의 타입을 반환합니다.
// AppError가 아닌 경우 Unknown을 반환합니다.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.errType
	}
	return Unknown
}

// RootCause 에러 체인을 끝까지 따라가 최초 원인 에러를 반환합니다.
func RootCause(err error) error {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}

// As 표준 errors.As의 별칭입니다.
func As(err error, target any) bool {
	return errors.As(err, target)
}
