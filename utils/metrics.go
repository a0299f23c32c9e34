package utils

import (
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики карт
	CardsCreated      int64
	CardsBlocked      int64
	Assignments       int64
	Unassignments     int64
	RejectedAssigns   int64
	LastCardOperation time.Time

	// Метрики выводов и уведомлений
	Withdrawals   map[string]int64
	Overdue       int64
	Notifications int64

	// Метрики ошибок
	ErrorCount     int64
	LastErrorTime  time.Time
	ErrorTypes     map[string]int64
	CriticalErrors int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics()
	})
	return metrics
}

// NewMetrics создает пустой набор метрик
func NewMetrics() *Metrics {
	return &Metrics{
		ErrorTypes:  make(map[string]int64),
		Withdrawals: make(map[string]int64),
	}
}

// RecordRequest записывает метрики запроса
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if failed {
		m.FailedRequests++
	}
}

// RecordCardOperation записывает метрики операции с картой
func (m *Metrics) RecordCardOperation(operation string, count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastCardOperation = time.Now()

	switch operation {
	case "create":
		m.CardsCreated += count
	case "block":
		m.CardsBlocked += count
	case "assign":
		m.Assignments += count
	case "unassign":
		m.Unassignments += count
	case "reject":
		m.RejectedAssigns += count
	}
}

// RecordWithdrawal записывает смену статуса вывода
func (m *Metrics) RecordWithdrawal(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Withdrawals[status]++
}

// RecordOverdue записывает количество просроченных выводов
func (m *Metrics) RecordOverdue(count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Overdue += count
}

// RecordNotification записывает отправленное уведомление
func (m *Metrics) RecordNotification() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications++
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrorLocked(err)
}

// RecordCriticalError записывает метрики критической ошибки
func (m *Metrics) RecordCriticalError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CriticalErrors++
	m.recordErrorLocked(err)
}

func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}
	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	withdrawals := make(map[string]int64, len(m.Withdrawals))
	for k, v := range m.Withdrawals {
		withdrawals[k] = v
	}
	errorTypes := make(map[string]int64, len(m.ErrorTypes))
	for k, v := range m.ErrorTypes {
		errorTypes[k] = v
	}

	return map[string]interface{}{
		"total_requests":     m.TotalRequests,
		"failed_requests":    m.FailedRequests,
		"average_latency":    m.AverageLatency.String(),
		"cards_created":      m.CardsCreated,
		"cards_blocked":      m.CardsBlocked,
		"assignments":        m.Assignments,
		"unassignments":      m.Unassignments,
		"rejected_assigns":   m.RejectedAssigns,
		"withdrawals":        withdrawals,
		"overdue":            m.Overdue,
		"notifications":      m.Notifications,
		"error_count":        m.ErrorCount,
		"critical_errors":    m.CriticalErrors,
		"last_error_time":    m.LastErrorTime,
		"error_types":        errorTypes,
		"last_card_activity": m.LastCardOperation,
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.CardsCreated = 0
	m.CardsBlocked = 0
	m.Assignments = 0
	m.Unassignments = 0
	m.RejectedAssigns = 0
	m.Withdrawals = make(map[string]int64)
	m.Overdue = 0
	m.Notifications = 0
	m.ErrorCount = 0
	m.CriticalErrors = 0
	m.ErrorTypes = make(map[string]int64)
}
