// Package model 은 도메인 모델을 정의한다.
package model

import "fmt"

// APIError 는 통일 에러 포맷을 나타낸다.
// 사용자에게 보여줄 메시지와 원인 카테고리를 포함한다.
type APIError struct {
	Code     string // 에러 코드
	Message  string // 에러 메시지
	Category string // 카테고리: auth, validation, policy, diary, system
}

// Error 는 error 인터페이스를 구현한다.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 정의된 에러 코드
const (
	ErrCodeWriteWindowClosed = "WRITE_WINDOW_CLOSED"
	ErrCodeDiaryExists       = "DIARY_ALREADY_EXISTS"
	ErrCodeDiaryNotFound     = "DIARY_NOT_FOUND"
	ErrCodeNotDiaryOwner     = "NOT_DIARY_OWNER"
	ErrCodeImageNotFound     = "IMAGE_NOT_FOUND"
	ErrCodeInvalidImage      = "INVALID_IMAGE"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
)

// NewWriteWindowClosedError 는 작성 가능 시간이 아닐 때의 에러를 생성한다.
func NewWriteWindowClosedError() *APIError {
	return &APIError{
		Code:     ErrCodeWriteWindowClosed,
		Message:  "일기는 18:00부터 24:00 사이에만 작성할 수 있습니다.",
		Category: "policy",
	}
}

// NewEditWindowClosedError 는 수정/삭제 가능 시간이 아닐 때의 에러를 생성한다.
// 오늘 날짜와 미래 날짜를 구분한 메시지를 담는다.
func NewEditWindowClosedError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeWriteWindowClosed,
		Message:  message,
		Category: "policy",
	}
}

// NewDiaryExistsError 는 같은 날짜에 일기가 이미 존재할 때의 에러를 생성한다.
func NewDiaryExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeDiaryExists,
		Message:  "해당 날짜에 이미 일기가 작성되었습니다.",
		Category: "diary",
	}
}

// NewDiaryNotFoundError 는 해당 날짜의 일기가 없을 때의 에러를 생성한다.
func NewDiaryNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeDiaryNotFound,
		Message:  "해당 날짜의 일기를 찾을 수 없습니다.",
		Category: "diary",
	}
}

// NewNotDiaryOwnerError 는 본인 소유가 아닌 일기에 대한 변경 시도 에러를 생성한다.
func NewNotDiaryOwnerError(action string) *APIError {
	return &APIError{
		Code:     ErrCodeNotDiaryOwner,
		Message:  fmt.Sprintf("본인의 일기만 %s할 수 있습니다.", action),
		Category: "policy",
	}
}

// NewImageNotFoundError 는 첨부 이미지가 없을 때의 에러를 생성한다.
func NewImageNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeImageNotFound,
		Message:  "첨부된 이미지를 찾을 수 없습니다.",
		Category: "diary",
	}
}

// NewInvalidImageError 는 업로드 이미지가 제한을 위반할 때의 에러를 생성한다.
func NewInvalidImageError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImage,
		Message:  reason,
		Category: "validation",
	}
}

// NewValidationError 는 입력값 검증 실패 에러를 생성한다.
func NewValidationError() *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "입력값이 올바르지 않습니다.",
		Category: "validation",
	}
}

// NewUnauthorizedError 는 미인증 요청 에러를 생성한다.
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "로그인이 필요합니다.",
		Category: "auth",
	}
}

// NewUserNotFoundError 는 사용자를 찾을 수 없을 때의 에러를 생성한다.
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "사용자를 찾을 수 없습니다.",
		Category: "auth",
	}
}
