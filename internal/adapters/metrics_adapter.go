package adapters

import (
	"strconv"
	"time"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage"
	"github.com/DevilCodeX-123/College-Hub-sub003/pkg/metrics"
)

// MetricsAdapter адаптирует metrics для storage.MetricsInterface
type MetricsAdapter struct {
	backend string
}

// NewMetricsAdapter создает новый адаптер для метрик выбранного хранилища
func NewMetricsAdapter(backend string) storage.MetricsInterface {
	return &MetricsAdapter{backend: backend}
}

// IncDBQuery увеличивает счетчик запросов к хранилищу
func (a *MetricsAdapter) IncDBQuery(operation string) {
	metrics.DBQueriesTotal.WithLabelValues(operation, a.backend).Inc()
}

// ObserveDBQueryDuration записывает время выполнения запроса
func (a *MetricsAdapter) ObserveDBQueryDuration(operation string, duration time.Duration) {
	metrics.DBQueryDuration.WithLabelValues(operation, a.backend).Observe(duration.Seconds())
}

// IncResetRun считает запуски недельного сброса по статусу
func (a *MetricsAdapter) IncResetRun(status string) {
	metrics.WeeklyResetRunsTotal.WithLabelValues(status).Inc()
}

// ObserveResetDuration записывает длительность недельного сброса
func (a *MetricsAdapter) ObserveResetDuration(duration time.Duration) {
	metrics.WeeklyResetDuration.Observe(duration.Seconds())
}

// IncBadgeAwarded считает выданные значки по месту
func (a *MetricsAdapter) IncBadgeAwarded(rank int) {
	metrics.WeeklyBadgesAwardedTotal.WithLabelValues(strconv.Itoa(rank)).Inc()
}

// AddUsersReset добавляет число пользователей с обнуленным недельным опытом
func (a *MetricsAdapter) AddUsersReset(count int64) {
	// счетчик Prometheus не принимает отрицательные значения
	if count <= 0 {
		return
	}
	metrics.WeeklyXPResetUsersTotal.Add(float64(count))
}

// IncLevelCalculation считает расчеты уровня по статусу
func (a *MetricsAdapter) IncLevelCalculation(status string) {
	metrics.RecordLevelCalculation(status)
}
