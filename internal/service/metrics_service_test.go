package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xXemran05khanXx/uniflow/internal/models"
)

func TestMetricsServiceRecordConflictsFromReport(t *testing.T) {
	m := NewMetricsService()

	report := newTestDetector().Detect([]models.ScheduleEntry{
		entry("CS101", "t1", "R1", "monday", "09:00", "10:00"),
		entry("MA201", "t1", "R2", "monday", "09:30", "10:30"),
	}, nil)
	require.Equal(t, 1, report.ByType[models.ConflictTeacher])

	m.RecordConflicts(report.ByType)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflictsDetected.WithLabelValues(string(models.ConflictTeacher))))
	assert.Zero(t, testutil.ToFloat64(m.conflictsDetected.WithLabelValues(string(models.ConflictRoom))), "zero counts are not recorded")
}

func TestMetricsServiceNilReceiver(t *testing.T) {
	var m *MetricsService

	// all observers must be safe before wiring
	m.RecordConflicts(map[models.ConflictType]int{models.ConflictTeacher: 1})
	m.ObserveGeneration("success", 1, 0, time.Second)
	m.ObserveHTTPRequest("GET", "/timetables", 200, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveCacheWrite(time.Millisecond)
	require.NotNil(t, m.Handler())
}
