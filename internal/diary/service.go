package diary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"time"

	"github.com/google/uuid"

	"github.com/kjhk3082/maum/internal/clock"
	"github.com/kjhk3082/maum/internal/model"
	"github.com/kjhk3082/maum/internal/repository"
)

// previewRunes 는 목록 응답에 담는 본문 미리보기 길이(룬 단위).
const previewRunes = 50

// previewMarker 는 미리보기가 잘렸을 때 덧붙이는 표시.
const previewMarker = "..."

// maxImageSize 는 첨부 이미지의 최대 크기 (5MB).
const maxImageSize = 5 * 1024 * 1024

// allowedImageTypes 는 업로드를 허용하는 이미지 콘텐츠 타입.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Sanitizer 는 저장 전 제목/본문에서 HTML 을 제거한다.
type Sanitizer interface {
	Sanitize(raw string) string
}

// ImageStore 는 첨부 이미지의 오브젝트 스토리지 인터페이스.
type ImageStore interface {
	// Put 은 오브젝트를 저장하고 공개 URL 을 반환한다.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete 는 오브젝트를 삭제한다.
	Delete(ctx context.Context, key string) error
}

// MetricsRecorder 는 일기 조작 메트릭 수집 인터페이스.
type MetricsRecorder interface {
	RecordDiaryCreated()
	RecordDiaryUpdated()
	RecordDiaryDeleted()
	RecordWriteWindowRejected()
}

// WriteRequest 는 일기 작성 요청.
type WriteRequest struct {
	Title     string
	Content   string
	Emotion   model.Emotion
	DiaryDate time.Time
}

// UpdateRequest 는 일기 수정 요청. 날짜와 소유자는 변경할 수 없다.
type UpdateRequest struct {
	Title   string
	Content string
	Emotion model.Emotion
}

// ImageUpload 는 첨부 이미지 업로드 요청.
type ImageUpload struct {
	Body         io.Reader
	Size         int64
	ContentType  string
	OriginalName string
	TextPosition int
}

// Detail 은 일기 상세 응답.
type Detail struct {
	ID             string
	Title          string
	Content        string
	Emotion        model.Emotion
	EmotionEmoji   string
	EmotionLabel   string
	DiaryDate      time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	AuthorNickname string
	Images         []ImageInfo
}

// Summary 는 일기 목록 응답. 본문은 미리보기만 담는다.
type Summary struct {
	ID             string
	Title          string
	Emotion        model.Emotion
	EmotionEmoji   string
	DiaryDate      time.Time
	ContentPreview string
}

// ImageInfo 는 첨부 이미지 응답.
type ImageInfo struct {
	ID               string
	FileURL          string
	OriginalFileName string
	FileSize         int64
	ContentType      string
	TextPosition     int
}

// EmotionCount 는 감정별 일기 개수.
type EmotionCount struct {
	Emotion model.Emotion
	Emoji   string
	Label   string
	Count   int
}

// Service 는 일기 도메인의 서비스 계층.
// 작성 가능 시간 정책, 하루 1개 제한, 소유자 검사를 모두 여기서 강제한다.
type Service struct {
	diaryRepo repository.DiaryRepository
	imageRepo repository.DiaryImageRepository
	userRepo  repository.UserRepository
	images    ImageStore
	sanitizer Sanitizer
	clock     clock.Clock
	metrics   MetricsRecorder
}

// NewService 는 Service 를 생성한다.
func NewService(
	diaryRepo repository.DiaryRepository,
	imageRepo repository.DiaryImageRepository,
	userRepo repository.UserRepository,
	images ImageStore,
	sanitizer Sanitizer,
	clk clock.Clock,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		diaryRepo: diaryRepo,
		imageRepo: imageRepo,
		userRepo:  userRepo,
		images:    images,
		sanitizer: sanitizer,
		clock:     clk,
		metrics:   metrics,
	}
}

// IsWritableNow 는 오늘 일기를 지금 작성할 수 있는지 반환한다.
// GET /api/diaries/writable-time 용.
func (s *Service) IsWritableNow() bool {
	now := s.clock.Now()
	return IsWritable(now, now)
}

// Create 는 일기를 생성한다.
// 작성 가능 시간 정책과 하루 1개 제한을 위반하면 APIError 를 반환한다.
func (s *Service) Create(ctx context.Context, userID string, req WriteRequest) (*Detail, error) {
	now := s.clock.Now()

	// 작성 가능 시간 체크
	if !IsWritable(req.DiaryDate, now) {
		s.recordWriteWindowRejected()
		return nil, model.NewWriteWindowClosedError()
	}

	// 하루 1개 제한 체크
	exists, err := s.diaryRepo.ExistsByUserAndDate(ctx, userID, req.DiaryDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check diary existence: %w", err)
	}
	if exists {
		return nil, model.NewDiaryExistsError()
	}

	d := &model.Diary{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     s.sanitize(req.Title),
		Content:   s.sanitize(req.Content),
		Emotion:   req.Emotion,
		DiaryDate: req.DiaryDate,
		CreatedAt: now,
	}

	// 동시 생성 경합은 (user_id, diary_date) 유니크 제약이 닫는다
	if err := s.diaryRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	slog.Info("일기 생성됨",
		slog.String("user_id", userID),
		slog.String("diary_id", d.ID),
		slog.String("date", d.DiaryDate.Format("2006-01-02")),
	)
	s.recordCreated()

	return s.toDetail(ctx, d)
}

// Get 은 특정 날짜의 일기를 조회한다. 없으면 DIARY_NOT_FOUND 를 반환한다.
func (s *Service) Get(ctx context.Context, userID string, date time.Time) (*Detail, error) {
	d, err := s.diaryRepo.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to find diary: %w", err)
	}
	if d == nil {
		return nil, model.NewDiaryNotFoundError()
	}
	return s.toDetail(ctx, d)
}

// List 는 사용자의 모든 일기를 요약으로 반환한다. 날짜 내림차순.
func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	diaries, err := s.diaryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diaries: %w", err)
	}
	return toSummaries(diaries), nil
}

// Update 는 특정 날짜의 일기를 수정한다.
// 수정 가능 시간, 존재 여부, 소유자 순으로 검사한다.
func (s *Service) Update(ctx context.Context, userID string, date time.Time, req UpdateRequest) (*Detail, error) {
	now := s.clock.Now()

	if !IsEditable(date, now) {
		s.recordWriteWindowRejected()
		return nil, editWindowError("수정", date, now)
	}

	d, err := s.diaryRepo.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to find diary: %w", err)
	}
	if d == nil {
		return nil, model.NewDiaryNotFoundError()
	}

	// 소유자 체크. 조회가 사용자 범위로 제한되어 있어 보통 도달하지 않지만
	// 방어적으로 한 번 더 확인한다.
	if d.UserID != userID {
		return nil, model.NewNotDiaryOwnerError("수정")
	}

	d.Title = s.sanitize(req.Title)
	d.Content = s.sanitize(req.Content)
	d.Emotion = req.Emotion
	d.UpdatedAt = &now

	if err := s.diaryRepo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update diary: %w", err)
	}

	slog.Info("일기 수정됨",
		slog.String("user_id", userID),
		slog.String("diary_id", d.ID),
		slog.String("date", date.Format("2006-01-02")),
	)
	s.recordUpdated()

	return s.toDetail(ctx, d)
}

// Delete 는 특정 날짜의 일기를 삭제한다. 첨부 이미지도 함께 삭제된다.
// 수정과 동일한 시간/소유자 제한을 적용한다.
func (s *Service) Delete(ctx context.Context, userID string, date time.Time) error {
	now := s.clock.Now()

	if !IsEditable(date, now) {
		s.recordWriteWindowRejected()
		return editWindowError("삭제", date, now)
	}

	d, err := s.diaryRepo.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return fmt.Errorf("failed to find diary: %w", err)
	}
	if d == nil {
		return model.NewDiaryNotFoundError()
	}

	if d.UserID != userID {
		return model.NewNotDiaryOwnerError("삭제")
	}

	// 스토리지 오브젝트 정리를 위해 삭제 전에 이미지 목록을 확보한다
	images, err := s.imageRepo.ListByDiaryID(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("failed to list diary images: %w", err)
	}

	if err := s.diaryRepo.Delete(ctx, d.ID); err != nil {
		return fmt.Errorf("failed to delete diary: %w", err)
	}

	// 오브젝트 삭제는 베스트 에포트. 실패해도 일기 삭제는 유지된다.
	s.deleteObjects(ctx, images)

	slog.Info("일기 삭제됨",
		slog.String("user_id", userID),
		slog.String("diary_id", d.ID),
		slog.String("date", date.Format("2006-01-02")),
	)
	s.recordDeleted()

	return nil
}

// Search 는 제목 또는 본문에 키워드가 포함된 일기를 요약으로 반환한다.
// 빈 키워드는 모든 일기에 매치된다.
func (s *Service) Search(ctx context.Context, userID, keyword string) ([]Summary, error) {
	diaries, err := s.diaryRepo.SearchByKeyword(ctx, userID, keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to search diaries: %w", err)
	}
	return toSummaries(diaries), nil
}

// ListByEmotion 은 지정 감정의 일기를 요약으로 반환한다.
func (s *Service) ListByEmotion(ctx context.Context, userID string, emotion model.Emotion) ([]Summary, error) {
	diaries, err := s.diaryRepo.ListByUserAndEmotion(ctx, userID, emotion)
	if err != nil {
		return nil, fmt.Errorf("failed to list diaries by emotion: %w", err)
	}
	return toSummaries(diaries), nil
}

// ListByDateRange 는 [start, end] 구간의 일기를 요약으로 반환한다. 달력 화면용.
func (s *Service) ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]Summary, error) {
	diaries, err := s.diaryRepo.ListByUserAndDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list diaries by date range: %w", err)
	}
	return toSummaries(diaries), nil
}

// EmotionStats 는 감정별 일기 개수를 반환한다. 일기가 없는 감정도 0 으로 포함한다.
func (s *Service) EmotionStats(ctx context.Context, userID string) ([]EmotionCount, error) {
	counts, err := s.diaryRepo.CountByEmotion(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count diaries by emotion: %w", err)
	}

	stats := make([]EmotionCount, 0, len(model.Emotions()))
	for _, e := range model.Emotions() {
		stats = append(stats, EmotionCount{
			Emotion: e,
			Emoji:   e.Emoji(),
			Label:   e.Label(),
			Count:   counts[e],
		})
	}
	return stats, nil
}

// ExistsOnDate 는 특정 날짜에 일기가 있는지 반환한다.
// 클라이언트가 작성/수정 중 어느 쪽으로 진입할지 판단하는 데 쓴다.
func (s *Service) ExistsOnDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	exists, err := s.diaryRepo.ExistsByUserAndDate(ctx, userID, date)
	if err != nil {
		return false, fmt.Errorf("failed to check diary existence: %w", err)
	}
	return exists, nil
}

// AttachImage 는 일기에 이미지를 첨부한다. 수정과 동일한 시간/소유자 제한을 적용한다.
func (s *Service) AttachImage(ctx context.Context, userID string, date time.Time, upload ImageUpload) (*ImageInfo, error) {
	now := s.clock.Now()

	if !IsEditable(date, now) {
		s.recordWriteWindowRejected()
		return nil, editWindowError("수정", date, now)
	}

	if upload.Size > maxImageSize {
		return nil, model.NewInvalidImageError("파일 크기는 5MB 이하여야 합니다.")
	}
	if !allowedImageTypes[upload.ContentType] {
		return nil, model.NewInvalidImageError("JPG, PNG, GIF, WebP 파일만 업로드 가능합니다.")
	}

	d, err := s.diaryRepo.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to find diary: %w", err)
	}
	if d == nil {
		return nil, model.NewDiaryNotFoundError()
	}
	if d.UserID != userID {
		return nil, model.NewNotDiaryOwnerError("수정")
	}

	key := imageKey(d.ID, upload.ContentType)
	url, err := s.images.Put(ctx, key, upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store image object: %w", err)
	}

	image := &model.DiaryImage{
		ID:               uuid.New().String(),
		DiaryID:          d.ID,
		FileName:         key,
		FileURL:          url,
		OriginalFileName: upload.OriginalName,
		FileSize:         upload.Size,
		ContentType:      upload.ContentType,
		TextPosition:     upload.TextPosition,
		CreatedAt:        now,
	}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		// 고아 오브젝트를 남기지 않는다
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			slog.Warn("첨부 이미지 오브젝트 정리 실패",
				slog.String("key", key),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("failed to record diary image: %w", err)
	}

	slog.Info("일기 이미지 첨부됨",
		slog.String("user_id", userID),
		slog.String("diary_id", d.ID),
		slog.String("image_id", image.ID),
	)

	info := toImageInfo(image)
	return &info, nil
}

// RemoveImage 는 첨부 이미지를 제거한다.
func (s *Service) RemoveImage(ctx context.Context, userID string, date time.Time, imageID string) error {
	now := s.clock.Now()

	if !IsEditable(date, now) {
		s.recordWriteWindowRejected()
		return editWindowError("수정", date, now)
	}

	d, err := s.diaryRepo.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return fmt.Errorf("failed to find diary: %w", err)
	}
	if d == nil {
		return model.NewDiaryNotFoundError()
	}
	if d.UserID != userID {
		return model.NewNotDiaryOwnerError("수정")
	}

	image, err := s.imageRepo.FindByID(ctx, imageID)
	if err != nil {
		return fmt.Errorf("failed to find diary image: %w", err)
	}
	if image == nil || image.DiaryID != d.ID {
		return model.NewImageNotFoundError()
	}

	if err := s.imageRepo.Delete(ctx, image.ID); err != nil {
		return fmt.Errorf("failed to delete diary image: %w", err)
	}

	if err := s.images.Delete(ctx, image.FileName); err != nil {
		slog.Warn("첨부 이미지 오브젝트 삭제 실패",
			slog.String("key", image.FileName),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// --- 내부 헬퍼 ---

// editWindowError 는 수정/삭제 불가 사유를 오늘/미래로 구분한 에러를 만든다.
// 과거 날짜는 언제나 수정 가능하므로 여기 도달하지 않는다.
func editWindowError(action string, date, now time.Time) *model.APIError {
	if dateOf(date).Equal(dateOf(now)) {
		return model.NewEditWindowClosedError(
			fmt.Sprintf("오늘 일기는 18:00~24:00 사이에만 %s할 수 있습니다.", action))
	}
	return model.NewEditWindowClosedError(
		fmt.Sprintf("미래 날짜의 일기는 %s할 수 없습니다.", action))
}

// toDetail 은 모델을 상세 응답으로 변환한다. 작성자 닉네임과 첨부 이미지를 포함한다.
func (s *Service) toDetail(ctx context.Context, d *model.Diary) (*Detail, error) {
	author, err := s.userRepo.FindByID(ctx, d.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find diary author: %w", err)
	}
	nickname := ""
	if author != nil {
		nickname = author.Nickname
	}

	images, err := s.imageRepo.ListByDiaryID(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diary images: %w", err)
	}
	infos := make([]ImageInfo, len(images))
	for i, img := range images {
		infos[i] = toImageInfo(img)
	}

	return &Detail{
		ID:             d.ID,
		Title:          d.Title,
		Content:        d.Content,
		Emotion:        d.Emotion,
		EmotionEmoji:   d.Emotion.Emoji(),
		EmotionLabel:   d.Emotion.Label(),
		DiaryDate:      d.DiaryDate,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		AuthorNickname: nickname,
		Images:         infos,
	}, nil
}

// toSummaries 는 모델 슬라이스를 요약 응답으로 변환한다.
func toSummaries(diaries []*model.Diary) []Summary {
	summaries := make([]Summary, len(diaries))
	for i, d := range diaries {
		summaries[i] = Summary{
			ID:             d.ID,
			Title:          d.Title,
			Emotion:        d.Emotion,
			EmotionEmoji:   d.Emotion.Emoji(),
			DiaryDate:      d.DiaryDate,
			ContentPreview: preview(d.Content),
		}
	}
	return summaries
}

// preview 는 본문의 앞 50룬을 잘라 미리보기를 만든다.
// 한글 본문이 깨지지 않도록 바이트가 아닌 룬 단위로 자른다.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewRunes {
		return content
	}
	return string(runes[:previewRunes]) + previewMarker
}

func toImageInfo(img *model.DiaryImage) ImageInfo {
	return ImageInfo{
		ID:               img.ID,
		FileURL:          img.FileURL,
		OriginalFileName: img.OriginalFileName,
		FileSize:         img.FileSize,
		ContentType:      img.ContentType,
		TextPosition:     img.TextPosition,
	}
}

// imageKey 는 첨부 이미지의 스토리지 키를 만든다.
func imageKey(diaryID, contentType string) string {
	ext := ""
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	return fmt.Sprintf("diaries/%s/%s%s", diaryID, uuid.New().String(), ext)
}

// deleteObjects 는 스토리지 오브젝트들을 베스트 에포트로 삭제한다.
func (s *Service) deleteObjects(ctx context.Context, images []*model.DiaryImage) {
	for _, img := range images {
		if err := s.images.Delete(ctx, img.FileName); err != nil {
			slog.Warn("첨부 이미지 오브젝트 삭제 실패",
				slog.String("key", img.FileName),
				slog.String("error", err.Error()),
			)
		}
	}
}

// sanitize 는 nil 가드를 포함한 제목/본문 정리.
func (s *Service) sanitize(raw string) string {
	if s.sanitizer == nil {
		return raw
	}
	return s.sanitizer.Sanitize(raw)
}

func (s *Service) recordCreated() {
	if s.metrics != nil {
		s.metrics.RecordDiaryCreated()
	}
}

func (s *Service) recordUpdated() {
	if s.metrics != nil {
		s.metrics.RecordDiaryUpdated()
	}
}

func (s *Service) recordDeleted() {
	if s.metrics != nil {
		s.metrics.RecordDiaryDeleted()
	}
}

func (s *Service) recordWriteWindowRejected() {
	if s.metrics != nil {
		s.metrics.RecordWriteWindowRejected()
	}
}
