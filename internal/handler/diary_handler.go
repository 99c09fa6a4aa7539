// Package handler 는 HTTP 핸들러를 제공한다.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/kjhk3082/maum/internal/diary"
	"github.com/kjhk3082/maum/internal/middleware"
	"github.com/kjhk3082/maum/internal/model"
)

const (
	// dateLayout 은 경로와 응답에서 쓰는 날짜 포맷 (YYYY-MM-DD).
	dateLayout = "2006-01-02"

	// maxTitleRunes / maxContentRunes 는 검증 상한. DB 컬럼 크기와 일치한다.
	maxTitleRunes   = 30
	maxContentRunes = 3000

	// maxUploadMemory 는 멀티파트 파싱 시 메모리에 올릴 최대 바이트 수.
	maxUploadMemory = 8 << 20
)

// DiaryServiceInterface 는 일기 핸들러가 필요로 하는 서비스 인터페이스.
type DiaryServiceInterface interface {
	IsWritableNow() bool
	Create(ctx context.Context, userID string, req diary.WriteRequest) (*diary.Detail, error)
	Get(ctx context.Context, userID string, date time.Time) (*diary.Detail, error)
	List(ctx context.Context, userID string) ([]diary.Summary, error)
	Update(ctx context.Context, userID string, date time.Time, req diary.UpdateRequest) (*diary.Detail, error)
	Delete(ctx context.Context, userID string, date time.Time) error
	Search(ctx context.Context, userID, keyword string) ([]diary.Summary, error)
	ListByEmotion(ctx context.Context, userID string, emotion model.Emotion) ([]diary.Summary, error)
	ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]diary.Summary, error)
	EmotionStats(ctx context.Context, userID string) ([]diary.EmotionCount, error)
	ExistsOnDate(ctx context.Context, userID string, date time.Time) (bool, error)
	AttachImage(ctx context.Context, userID string, date time.Time, upload diary.ImageUpload) (*diary.ImageInfo, error)
	RemoveImage(ctx context.Context, userID string, date time.Time, imageID string) error
}

// DiaryHandler 는 일기 관련 HTTP 핸들러.
type DiaryHandler struct {
	service DiaryServiceInterface
}

// NewDiaryHandler 는 DiaryHandler 를 생성한다.
func NewDiaryHandler(service DiaryServiceInterface) *DiaryHandler {
	return &DiaryHandler{service: service}
}

// writeDiaryRequest 는 일기 작성 요청 바디.
type writeDiaryRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Emotion   string `json:"emotion"`
	DiaryDate string `json:"diaryDate"`
}

// updateDiaryRequest 는 일기 수정 요청 바디. 날짜는 경로에서 받는다.
type updateDiaryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Emotion string `json:"emotion"`
}

// diaryDetailResponse 는 일기 상세 응답.
type diaryDetailResponse struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	Emotion        string          `json:"emotion"`
	EmotionEmoji   string          `json:"emotionEmoji"`
	EmotionLabel   string          `json:"emotionLabel"`
	DiaryDate      string          `json:"diaryDate"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      *time.Time      `json:"updatedAt"`
	AuthorNickname string          `json:"authorNickname"`
	Images         []imageResponse `json:"images"`
}

// diarySummaryResponse 는 일기 목록의 항목 응답.
type diarySummaryResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Emotion        string `json:"emotion"`
	EmotionEmoji   string `json:"emotionEmoji"`
	DiaryDate      string `json:"diaryDate"`
	ContentPreview string `json:"contentPreview"`
}

// imageResponse 는 첨부 이미지 응답.
type imageResponse struct {
	ID               string `json:"id"`
	FileURL          string `json:"fileUrl"`
	OriginalFileName string `json:"originalFileName"`
	FileSize         int64  `json:"fileSize"`
	ContentType      string `json:"contentType"`
	TextPosition     int    `json:"textPosition"`
}

// emotionCountResponse 는 감정별 통계 응답.
type emotionCountResponse struct {
	Emotion string `json:"emotion"`
	Emoji   string `json:"emoji"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
}

// Create 는 일기 작성을 처리한다.
// POST /api/diaries
func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	var req writeDiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "요청 본문을 해석할 수 없습니다.", nil)
		return
	}

	fields := map[string]string{}
	validateTitle(req.Title, fields)
	validateContent(req.Content, fields)
	emotion, ok := model.ParseEmotion(req.Emotion)
	if !ok {
		fields["emotion"] = "감정은 HAPPY, SAD, ANGRY, PEACEFUL, ANXIOUS 중 하나여야 합니다."
	}
	date, dateErr := time.Parse(dateLayout, req.DiaryDate)
	if dateErr != nil {
		fields["diaryDate"] = "날짜는 YYYY-MM-DD 형식이어야 합니다."
	}
	if len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "입력값이 올바르지 않습니다.", fields)
		return
	}

	detail, err := h.service.Create(r.Context(), userID, diary.WriteRequest{
		Title:     req.Title,
		Content:   req.Content,
		Emotion:   emotion,
		DiaryDate: date,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "일기가 작성되었습니다.", toDiaryDetailResponse(detail))
}

// Get 은 날짜로 일기를 조회한다.
// GET /api/diaries/{date}
func (h *DiaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	date, ok := parseDateParam(w, r, "date")
	if !ok {
		return
	}

	detail, err := h.service.Get(r.Context(), userID, date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "일기를 조회했습니다.", toDiaryDetailResponse(detail))
}

// List 는 사용자의 일기 목록을 반환한다.
// GET /api/diaries
func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	summaries, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "일기 목록을 조회했습니다.", toDiarySummaryResponses(summaries))
}

// Update 는 일기 수정을 처리한다.
// PUT /api/diaries/{date}
func (h *DiaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	date, ok := parseDateParam(w, r, "date")
	if !ok {
		return
	}

	var req updateDiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "요청 본문을 해석할 수 없습니다.", nil)
		return
	}

	fields := map[string]string{}
	validateTitle(req.Title, fields)
	validateContent(req.Content, fields)
	emotion, emotionOK := model.ParseEmotion(req.Emotion)
	if !emotionOK {
		fields["emotion"] = "감정은 HAPPY, SAD, ANGRY, PEACEFUL, ANXIOUS 중 하나여야 합니다."
	}
	if len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "입력값이 올바르지 않습니다.", fields)
		return
	}

	detail, err := h.service.Update(r.Context(), userID, date, diary.UpdateRequest{
		Title:   req.Title,
		Content: req.Content,
		Emotion: emotion,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "일기가 수정되었습니다.", toDiaryDetailResponse(detail))
}

// Delete 는 일기 삭제를 처리한다.
// DELETE /api/diaries/{date}
func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	date, ok := parseDateParam(w, r, "date")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, date); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "일기가 삭제되었습니다.", nil)
}

// Search 는 키워드로 일기를 검색한다.
// GET /api/diaries/search?keyword=
func (h *DiaryHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	// 빈 키워드는 전체 일치로 동작한다.
	keyword := r.URL.Query().Get("keyword")

	summaries, err := h.service.Search(r.Context(), userID, keyword)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "검색 결과를 조회했습니다.", toDiarySummaryResponses(summaries))
}

// ListByEmotion 은 감정별 일기 목록을 반환한다.
// GET /api/diaries/emotion/{emotion}
func (h *DiaryHandler) ListByEmotion(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	emotion, ok := model.ParseEmotion(chi.URLParam(r, "emotion"))
	if !ok {
		writeError(w, http.StatusBadRequest, "입력값이 올바르지 않습니다.",
			map[string]string{"emotion": "감정은 HAPPY, SAD, ANGRY, PEACEFUL, ANXIOUS 중 하나여야 합니다."})
		return
	}

	summaries, err := h.service.ListByEmotion(r.Context(), userID, emotion)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "감정별 일기 목록을 조회했습니다.", toDiarySummaryResponses(summaries))
}

// ListByDateRange 는 기간 내의 일기 목록을 반환한다. 달력 화면에서 사용한다.
// GET /api/diaries/range?start=&end=
func (h *DiaryHandler) ListByDateRange(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	fields := map[string]string{}
	start, startErr := time.Parse(dateLayout, r.URL.Query().Get("start"))
	if startErr != nil {
		fields["start"] = "날짜는 YYYY-MM-DD 형식이어야 합니다."
	}
	end, endErr := time.Parse(dateLayout, r.URL.Query().Get("end"))
	if endErr != nil {
		fields["end"] = "날짜는 YYYY-MM-DD 형식이어야 합니다."
	}
	if len(fields) == 0 && end.Before(start) {
		fields["end"] = "종료일은 시작일보다 빠를 수 없습니다."
	}
	if len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "입력값이 올바르지 않습니다.", fields)
		return
	}

	summaries, err := h.service.ListByDateRange(r.Context(), userID, start, end)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "기간별 일기 목록을 조회했습니다.", toDiarySummaryResponses(summaries))
}

// EmotionStats 는 감정별 일기 개수를 반환한다.
// GET /api/diaries/stats/emotions
func (h *DiaryHandler) EmotionStats(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	counts, err := h.service.EmotionStats(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	results := make([]emotionCountResponse, len(counts))
	for i, c := range counts {
		results[i] = emotionCountResponse{
			Emotion: string(c.Emotion),
			Emoji:   c.Emoji,
			Label:   c.Label,
			Count:   c.Count,
		}
	}

	writeSuccess(w, http.StatusOK, "감정별 통계를 조회했습니다.", results)
}

// WritableTime 은 지금 일기를 작성할 수 있는지 여부를 반환한다.
// GET /api/diaries/writable-time
func (h *DiaryHandler) WritableTime(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "작성 가능 시간을 조회했습니다.", h.service.IsWritableNow())
}

// Exists 는 해당 날짜에 일기가 있는지 여부를 반환한다.
// GET /api/diaries/exists/{date}
func (h *DiaryHandler) Exists(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	date, ok := parseDateParam(w, r, "date")
	if !ok {
		return
	}

	exists, err := h.service.ExistsOnDate(r.Context(), userID, date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "작성 여부를 조회했습니다.", exists)
}

// AttachImage 는 일기에 이미지를 첨부한다.
// POST /api/diaries/{date}/images (multipart/form-data, 파트 이름 "image")
func (h *DiaryHandler) AttachImage(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	date, ok := parseDateParam(w, r, "date")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "업로드 요청을 해석할 수 없습니다.", nil)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "입력값이 올바르지 않습니다.",
			map[string]string{"image": "이미지 파일을 첨부해 주세요."})
		return
	}
	defer file.Close()

	textPosition := 0
	if raw := r.FormValue("textPosition"); raw != "" {
		pos, posErr := strconv.Atoi(raw)
		if posErr != nil || pos < 0 {
			writeError(w, http.StatusBadRequest, "입력값이 올바르지 않습니다.",
				map[string]string{"textPosition": "본문 위치는 0 이상의 정수여야 합니다."})
			return
		}
		textPosition = pos
	}

	info, err := h.service.AttachImage(r.Context(), userID, date, diary.ImageUpload{
		Body:         file,
		Size:         header.Size,
		ContentType:  header.Header.Get("Content-Type"),
		OriginalName: header.Filename,
		TextPosition: textPosition,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "이미지가 첨부되었습니다.", toImageResponse(*info))
}

// RemoveImage 는 첨부 이미지를 삭제한다.
// DELETE /api/diaries/{date}/images/{imageID}
func (h *DiaryHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	date, ok := parseDateParam(w, r, "date")
	if !ok {
		return
	}

	if err := h.service.RemoveImage(r.Context(), userID, date, chi.URLParam(r, "imageID")); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "이미지가 삭제되었습니다.", nil)
}

// --- 헬퍼 함수 ---

// parseDateParam 은 경로의 날짜 파라미터를 해석한다. 실패 시 400 을 쓰고 false 를 돌려준다.
func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	date, err := time.Parse(dateLayout, chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "입력값이 올바르지 않습니다.",
			map[string]string{name: "날짜는 YYYY-MM-DD 형식이어야 합니다."})
		return time.Time{}, false
	}
	return date, true
}

func validateTitle(title string, fields map[string]string) {
	if title == "" {
		fields["title"] = "제목을 입력해 주세요."
		return
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		fields["title"] = "제목은 30자 이하여야 합니다."
	}
}

func validateContent(content string, fields map[string]string) {
	if content == "" {
		fields["content"] = "내용을 입력해 주세요."
		return
	}
	if utf8.RuneCountInString(content) > maxContentRunes {
		fields["content"] = "내용은 3000자 이하여야 합니다."
	}
}

func toDiaryDetailResponse(d *diary.Detail) diaryDetailResponse {
	images := make([]imageResponse, len(d.Images))
	for i, img := range d.Images {
		images[i] = toImageResponse(img)
	}
	return diaryDetailResponse{
		ID:             d.ID,
		Title:          d.Title,
		Content:        d.Content,
		Emotion:        string(d.Emotion),
		EmotionEmoji:   d.EmotionEmoji,
		EmotionLabel:   d.EmotionLabel,
		DiaryDate:      d.DiaryDate.Format(dateLayout),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		AuthorNickname: d.AuthorNickname,
		Images:         images,
	}
}

func toDiarySummaryResponses(summaries []diary.Summary) []diarySummaryResponse {
	results := make([]diarySummaryResponse, len(summaries))
	for i, s := range summaries {
		results[i] = diarySummaryResponse{
			ID:             s.ID,
			Title:          s.Title,
			Emotion:        string(s.Emotion),
			EmotionEmoji:   s.EmotionEmoji,
			DiaryDate:      s.DiaryDate.Format(dateLayout),
			ContentPreview: s.ContentPreview,
		}
	}
	return results
}

func toImageResponse(info diary.ImageInfo) imageResponse {
	return imageResponse{
		ID:               info.ID,
		FileURL:          info.FileURL,
		OriginalFileName: info.OriginalFileName,
		FileSize:         info.FileSize,
		ContentType:      info.ContentType,
		TextPosition:     info.TextPosition,
	}
}
