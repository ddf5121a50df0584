package storage

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockDatabaseInterface - мок для DatabaseInterface
type MockDatabaseInterface struct {
	mock.Mock
}

func (m *MockDatabaseInterface) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(Row)
}

func (m *MockDatabaseInterface) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	mockArgs := m.Called(ctx, query, args)
	if mockArgs.Get(0) == nil {
		return nil, mockArgs.Error(1)
	}
	return mockArgs.Get(0).(Rows), mockArgs.Error(1)
}

func (m *MockDatabaseInterface) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(int64), mockArgs.Error(1)
}

func (m *MockDatabaseInterface) BeginTx(ctx context.Context) (Tx, error) {
	mockArgs := m.Called(ctx)
	if mockArgs.Get(0) == nil {
		return nil, mockArgs.Error(1)
	}
	return mockArgs.Get(0).(Tx), mockArgs.Error(1)
}

func (m *MockDatabaseInterface) Health(ctx context.Context) error {
	mockArgs := m.Called(ctx)
	return mockArgs.Error(0)
}

// MockTx - мок для транзакции
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(int64), mockArgs.Error(1)
}

func (m *MockTx) Commit(ctx context.Context) error {
	mockArgs := m.Called(ctx)
	return mockArgs.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	mockArgs := m.Called(ctx)
	return mockArgs.Error(0)
}

// MockMetricsInterface - мок для MetricsInterface
type MockMetricsInterface struct {
	mock.Mock
}

func (m *MockMetricsInterface) IncDBQuery(operation string) {
	m.Called(operation)
}

func (m *MockMetricsInterface) ObserveDBQueryDuration(operation string, duration time.Duration) {
	m.Called(operation, duration)
}

func (m *MockMetricsInterface) IncResetRun(status string) {
	m.Called(status)
}

func (m *MockMetricsInterface) ObserveResetDuration(duration time.Duration) {
	m.Called(duration)
}

func (m *MockMetricsInterface) IncBadgeAwarded(rank int) {
	m.Called(rank)
}

func (m *MockMetricsInterface) AddUsersReset(count int64) {
	m.Called(count)
}

func (m *MockMetricsInterface) IncLevelCalculation(status string) {
	m.Called(status)
}

// MockRow - мок для Row, заполняет dest значениями values
type MockRow struct {
	values []interface{}
	err    error
}

func (r *MockRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	scanValues(r.values, dest)
	return nil
}

// MockRows - мок для Rows
type MockRows struct {
	mock.Mock
	data [][]interface{}
	pos  int
}

func (m *MockRows) Next() bool {
	m.pos++
	return m.pos <= len(m.data)
}

func (m *MockRows) Scan(dest ...interface{}) error {
	if m.pos <= 0 || m.pos > len(m.data) {
		return nil
	}
	scanValues(m.data[m.pos-1], dest)
	return nil
}

func (m *MockRows) Err() error {
	mockArgs := m.Called()
	return mockArgs.Error(0)
}

func (m *MockRows) Close() {
	m.Called()
}

func scanValues(row []interface{}, dest []interface{}) {
	for i, d := range dest {
		if i >= len(row) {
			return
		}
		switch d := d.(type) {
		case *string:
			*d = row[i].(string)
		case *int:
			*d = row[i].(int)
		case *int64:
			*d = row[i].(int64)
		case *time.Time:
			*d = row[i].(time.Time)
		}
	}
}
