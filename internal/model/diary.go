// Package model 은 도메인 모델을 정의한다.
package model

import "time"

// Emotion 은 일기에 기록하는 감정 태그를 나타낸다.
type Emotion string

const (
	// EmotionHappy 는 기쁨.
	EmotionHappy Emotion = "HAPPY"
	// EmotionSad 는 슬픔.
	EmotionSad Emotion = "SAD"
	// EmotionAngry 는 화남.
	EmotionAngry Emotion = "ANGRY"
	// EmotionPeaceful 은 평온.
	EmotionPeaceful Emotion = "PEACEFUL"
	// EmotionAnxious 는 불안.
	EmotionAnxious Emotion = "ANXIOUS"
)

// emotionMeta 는 감정별 표시용 메타데이터.
type emotionMeta struct {
	emoji string
	label string
}

var emotionMetas = map[Emotion]emotionMeta{
	EmotionHappy:    {emoji: "😊", label: "기쁨"},
	EmotionSad:      {emoji: "😢", label: "슬픔"},
	EmotionAngry:    {emoji: "😠", label: "화남"},
	EmotionPeaceful: {emoji: "😴", label: "평온"},
	EmotionAnxious:  {emoji: "😰", label: "불안"},
}

// Emotions 는 정의된 모든 감정을 반환한다.
func Emotions() []Emotion {
	return []Emotion{EmotionHappy, EmotionSad, EmotionAngry, EmotionPeaceful, EmotionAnxious}
}

// ParseEmotion 은 문자열을 Emotion 으로 변환한다.
// 정의되지 않은 감정이면 false 를 반환한다.
func ParseEmotion(s string) (Emotion, bool) {
	e := Emotion(s)
	if _, ok := emotionMetas[e]; !ok {
		return "", false
	}
	return e, true
}

// Emoji 는 감정의 이모지를 반환한다.
func (e Emotion) Emoji() string {
	return emotionMetas[e].emoji
}

// Label 은 감정의 한글 라벨을 반환한다.
func (e Emotion) Label() string {
	return emotionMetas[e].label
}

// Diary 는 하루치 일기를 나타낸다.
// 한 사용자는 한 날짜에 하나의 일기만 가질 수 있다 (user_id, diary_date 유니크).
// UserID 는 생성 시 확정되며 이후 변경되지 않는다.
type Diary struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Emotion   Emotion
	DiaryDate time.Time // 날짜 부분만 의미를 가진다
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// DiaryImage 는 일기에 첨부된 이미지를 나타낸다.
// 일기가 삭제되면 함께 삭제되며 독립적인 수명을 가지지 않는다.
type DiaryImage struct {
	ID               string
	DiaryID          string
	FileName         string // 오브젝트 스토리지 키
	FileURL          string
	OriginalFileName string
	FileSize         int64
	ContentType      string
	TextPosition     int // 본문 텍스트 내 이미지 위치
	CreatedAt        time.Time
}
