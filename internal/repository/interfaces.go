// Package repository 는 데이터 영속화 인터페이스를 정의한다.
package repository

import (
	"context"
	"time"

	"github.com/kjhk3082/maum/internal/model"
)

// UserRepository 는 사용자 데이터의 영속화 인터페이스.
type UserRepository interface {
	// FindByID 는 지정 ID 의 사용자를 조회한다. 없으면 nil 을 반환한다.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByProviderUserID 는 (provider, provider_user_id) 로 사용자를 조회한다.
	// 없으면 nil 을 반환한다.
	FindByProviderUserID(ctx context.Context, provider model.Provider, providerUserID string) (*model.User, error)

	// Create 는 사용자를 생성한다.
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile 은 email, nickname, profile_image_url, updated_at, last_login_at 을 갱신한다.
	UpdateProfile(ctx context.Context, user *model.User) error

	// DeleteByID 는 지정 ID 의 사용자를 삭제한다.
	// 소유 일기와 첨부 이미지는 CASCADE 로 함께 삭제된다.
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository 는 세션 데이터의 영속화 인터페이스.
type SessionRepository interface {
	// Create 는 세션을 생성한다.
	Create(ctx context.Context, session *model.Session) error
	// FindByID 는 지정 ID 의 세션을 조회한다. 기한이 지났으면 nil 을 반환한다.
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID 는 지정 ID 의 세션을 삭제한다.
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID 는 지정 사용자의 모든 세션을 삭제한다.
	DeleteByUserID(ctx context.Context, userID string) error
}

// DiaryRepository 는 일기 데이터의 영속화 인터페이스.
// 모든 조회는 사용자 단위로 범위가 제한된다.
type DiaryRepository interface {
	// FindByUserAndDate 는 (사용자, 날짜) 의 일기를 조회한다. 없으면 nil 을 반환한다.
	FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.Diary, error)

	// ExistsByUserAndDate 는 (사용자, 날짜) 에 일기가 있는지 확인한다.
	ExistsByUserAndDate(ctx context.Context, userID string, date time.Time) (bool, error)

	// Create 는 일기를 생성한다.
	// (user_id, diary_date) 유니크 제약 위반 시 model.NewDiaryExistsError() 를 반환한다.
	// 동시 생성 경합은 이 제약으로 닫힌다.
	Create(ctx context.Context, diary *model.Diary) error

	// Update 는 title, content, emotion, updated_at 을 덮어쓴다.
	// diary_date 와 user_id 는 변경하지 않는다.
	Update(ctx context.Context, diary *model.Diary) error

	// Delete 는 일기를 삭제한다. 첨부 이미지 행도 같은 트랜잭션에서 명시적으로 삭제한다.
	Delete(ctx context.Context, id string) error

	// ListByUser 는 사용자의 모든 일기를 diary_date 내림차순으로 반환한다.
	ListByUser(ctx context.Context, userID string) ([]*model.Diary, error)

	// SearchByKeyword 는 제목 또는 본문에 키워드가 포함된 일기를 대소문자 구분 없이 검색한다.
	// 빈 키워드는 모든 일기에 매치된다.
	SearchByKeyword(ctx context.Context, userID, keyword string) ([]*model.Diary, error)

	// ListByUserAndEmotion 은 지정 감정의 일기를 반환한다.
	ListByUserAndEmotion(ctx context.Context, userID string, emotion model.Emotion) ([]*model.Diary, error)

	// ListByUserAndDateRange 는 [start, end] 구간의 일기를 diary_date 내림차순으로 반환한다.
	ListByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Diary, error)

	// CountByEmotion 은 사용자의 감정별 일기 개수를 반환한다.
	CountByEmotion(ctx context.Context, userID string) (map[model.Emotion]int, error)
}

// DiaryImageRepository 는 일기 첨부 이미지의 영속화 인터페이스.
type DiaryImageRepository interface {
	// Create 는 첨부 이미지를 기록한다.
	Create(ctx context.Context, image *model.DiaryImage) error

	// FindByID 는 지정 ID 의 이미지를 조회한다. 없으면 nil 을 반환한다.
	FindByID(ctx context.Context, id string) (*model.DiaryImage, error)

	// ListByDiaryID 는 일기의 첨부 이미지를 text_position 오름차순으로 반환한다.
	ListByDiaryID(ctx context.Context, diaryID string) ([]*model.DiaryImage, error)

	// ListByUserID 는 사용자의 모든 첨부 이미지를 반환한다.
	// 회원 탈퇴 시 오브젝트 스토리지 정리에 사용한다.
	ListByUserID(ctx context.Context, userID string) ([]*model.DiaryImage, error)

	// Delete 는 지정 ID 의 이미지 행을 삭제한다.
	Delete(ctx context.Context, id string) error
}
