// Package metrics 는 Prometheus 메트릭 수집과 공개를 제공한다.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector 는 메트릭 수집 인터페이스.
// 서비스 계층과 미들웨어에서 사용한다.
type MetricsCollector interface {
	RecordDiaryCreated()
	RecordDiaryUpdated()
	RecordDiaryDeleted()
	RecordWriteWindowRejected()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector 는 Prometheus 메트릭을 수집하는 구현.
type Collector struct {
	diaryCreated        prometheus.Counter
	diaryUpdated        prometheus.Counter
	diaryDeleted        prometheus.Counter
	writeWindowRejected prometheus.Counter
	httpStatus          *prometheus.CounterVec
	requestLatency      prometheus.Histogram
}

// NewCollector 는 Collector 를 생성하고 지정 레지스트리에 메트릭을 등록한다.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		diaryCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maum_diary_created_total",
			Help: "작성된 일기의 합계",
		}),
		diaryUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maum_diary_updated_total",
			Help: "수정된 일기의 합계",
		}),
		diaryDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maum_diary_deleted_total",
			Help: "삭제된 일기의 합계",
		}),
		writeWindowRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maum_write_window_rejected_total",
			Help: "작성 가능 시간 제한으로 거부된 요청의 합계",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maum_http_status_total",
			Help: "HTTP 상태 코드별 응답 수",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "maum_request_latency_seconds",
			Help:    "HTTP 요청 처리 레이턴시 (초)",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.diaryCreated,
		c.diaryUpdated,
		c.diaryDeleted,
		c.writeWindowRejected,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordDiaryCreated 는 일기 작성을 기록한다.
func (c *Collector) RecordDiaryCreated() {
	c.diaryCreated.Inc()
}

// RecordDiaryUpdated 는 일기 수정을 기록한다.
func (c *Collector) RecordDiaryUpdated() {
	c.diaryUpdated.Inc()
}

// RecordDiaryDeleted 는 일기 삭제를 기록한다.
func (c *Collector) RecordDiaryDeleted() {
	c.diaryDeleted.Inc()
}

// RecordWriteWindowRejected 는 작성 시간 제한 거부를 기록한다.
func (c *Collector) RecordWriteWindowRejected() {
	c.writeWindowRejected.Inc()
}

// RecordHTTPStatus 는 HTTP 상태 코드를 기록한다.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency 는 요청 처리 레이턴시를 기록한다.
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler 는 Prometheus 스크레이프용 HTTP 핸들러를 반환한다.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
