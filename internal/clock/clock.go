// Package clock 은 현재 시각의 공급을 추상화한다.
// 작성 가능 시간 정책이 벽시계에 의존하므로, 테스트에서 시각을 고정할 수 있도록
// 서비스에는 항상 Clock 을 주입한다.
package clock

import "time"

// Clock 은 현재 시각을 공급한다.
type Clock interface {
	Now() time.Time
}

// System 은 실제 시스템 시계를 사용하는 Clock.
type System struct{}

// Now 는 time.Now() 를 반환한다.
func (System) Now() time.Time {
	return time.Now()
}

// Fixed 는 고정된 시각을 반환하는 Clock. 테스트용.
type Fixed struct {
	T time.Time
}

// Now 는 고정된 시각을 반환한다.
func (f Fixed) Now() time.Time {
	return f.T
}
