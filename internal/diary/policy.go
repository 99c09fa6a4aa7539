// Package diary 는 일기 도메인의 핵심 로직을 제공한다.
//
// 작성 가능 시간 정책:
//   - 과거 날짜의 일기는 언제든 작성/수정/삭제할 수 있다 (밀린 일기 허용).
//   - 오늘 날짜의 일기는 18:00:00 이상 자정 미만에만 쓸 수 있다 (하루를 돌아보는 시간).
//   - 미래 날짜의 일기는 쓸 수 없다.
//
// 날짜 비교는 호출 시점의 달력 날짜로 매번 다시 판정한다. 자정이 지나면
// 같은 대상 날짜가 "오늘"에서 "과거"로 넘어가 무조건 작성 가능해진다.
package diary

import "time"

// writeWindowStartHour 는 오늘 일기 작성이 허용되는 시작 시각(시).
// 시작 경계는 포함(18:00:00 정각에 작성 가능), 끝 경계는 자정으로 배타적이다.
const writeWindowStartHour = 18

// IsWritable 은 대상 날짜의 일기를 지금 작성/수정/삭제할 수 있는지 판정한다.
// 순수 함수이며 부수효과가 없다.
func IsWritable(targetDate, now time.Time) bool {
	today := dateOf(now)
	target := dateOf(targetDate)

	// 과거 날짜는 언제든 작성 가능
	if target.Before(today) {
		return true
	}

	// 오늘 날짜는 18:00-24:00 시간 제한
	if target.Equal(today) {
		return now.Hour() >= writeWindowStartHour
	}

	// 미래 날짜는 작성 불가
	return false
}

// IsEditable 은 수정/삭제 가능 여부를 판정한다. 작성과 동일한 정책을 쓴다.
func IsEditable(targetDate, now time.Time) bool {
	return IsWritable(targetDate, now)
}

// dateOf 는 시각에서 달력 날짜 부분만 남긴다.
// 타임존이 다른 값끼리도 달력 날짜로만 비교되도록 UTC 자정으로 정규화한다.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
