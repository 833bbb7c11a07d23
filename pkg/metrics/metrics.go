package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

// Package metrics keeps operational gauges and counters in an embedded
// time-series store under the application workdir.

var (
	storage  tstorage.Storage
	counters sync.Map
	mu       sync.Mutex
)

func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(7*24*time.Hour),
	)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// SetGauge records a point-in-time value for the named metric.
func SetGauge(name string, value int64) {
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
		},
	})
}

// IncrCounter bumps an in-memory counter and mirrors the running total
// into the store so it survives as a series.
func IncrCounter(name string, delta int64) {
	v, _ := counters.LoadOrStore(name, new(int64))
	p := v.(*int64)
	mu.Lock()
	*p += delta
	total := *p
	mu.Unlock()
	SetGauge(name, total)
}

func CounterValue(name string) int64 {
	v, ok := counters.Load(name)
	if !ok {
		return 0
	}
	mu.Lock()
	defer mu.Unlock()
	return *(v.(*int64))
}

// QueryRange returns data points for the metric between start and end
// (unix seconds).
func QueryRange(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	if storage == nil {
		return nil, nil
	}
	return storage.Select(name, nil, start, end)
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
