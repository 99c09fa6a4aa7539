package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kjhk3082/maum/internal/model"
)

// apiResponse 는 모든 엔드포인트가 공유하는 응답 봉투.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// writeSuccess 는 성공 응답을 봉투 포맷으로 써 내린다.
func writeSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeError 는 실패 응답을 봉투 포맷으로 써 내린다. data 에는 부가 정보
// (검증 실패 시 필드별 메시지 등) 를 담을 수 있다.
func writeError(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiResponse{
		Success: false,
		Message: message,
		Data:    data,
	})
}

// handleServiceError 는 서비스 계층에서 올라온 에러를 HTTP 상태 코드로 변환한다.
// 같은 에러 코드라도 메서드에 따라 상태가 달라지는 경우 (조회의 404 와
// 수정/삭제의 400) 가 있어 요청도 함께 받는다.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeError(w, mapAPIErrorToHTTPStatus(apiErr, r.Method), apiErr.Message, nil)
		return
	}

	// APIError 이외의 에러는 상세를 숨기고 로그에만 남긴다.
	slog.Error("내부 서버 오류",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "서버 내부 오류가 발생했습니다.", nil)
}

// mapAPIErrorToHTTPStatus 는 APIError 코드를 HTTP 상태 코드에 대응시킨다.
func mapAPIErrorToHTTPStatus(apiErr *model.APIError, method string) int {
	switch apiErr.Code {
	case model.ErrCodeWriteWindowClosed,
		model.ErrCodeDiaryExists,
		model.ErrCodeNotDiaryOwner,
		model.ErrCodeInvalidImage,
		model.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case model.ErrCodeDiaryNotFound:
		// 조회는 404, 수정/삭제는 400 을 돌려준다.
		if method == http.MethodGet {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case model.ErrCodeImageNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
