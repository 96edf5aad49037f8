package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xXemran05khanXx/uniflow/internal/dto"
	"github.com/xXemran05khanXx/uniflow/internal/models"
	"github.com/xXemran05khanXx/uniflow/pkg/config"
	appErrors "github.com/xXemran05khanXx/uniflow/pkg/errors"
	"github.com/xXemran05khanXx/uniflow/pkg/jobs"
)

func TestTimetableServiceGenerateSuccess(t *testing.T) {
	svc := newTimetableServiceFixture(t, timetableFixtureConfig{})

	resp, err := svc.Generate(context.Background(), smallGenerateRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.TimetableID)
	assert.NotEmpty(t, resp.Entries)
	assert.Empty(t, resp.Unscheduled)
	assert.InDelta(t, 100.0, resp.SchedulingRate, 0.001)
	assert.True(t, resp.Report.CanProceed)
	assert.Greater(t, resp.QualityScore, 0.0)
}

func TestTimetableServiceGenerateRejectsUnknownAlgorithm(t *testing.T) {
	svc := newTimetableServiceFixture(t, timetableFixtureConfig{})

	req := smallGenerateRequest()
	req.Config.Algorithm = "genetic"

	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "genetic")
}

func TestTimetableServiceGenerateAggregatesEntityErrors(t *testing.T) {
	svc := newTimetableServiceFixture(t, timetableFixtureConfig{})

	req := smallGenerateRequest()
	req.Courses[0].CourseCode = ""
	req.Courses[0].Credits = 0
	req.Rooms[0].Capacity = 0

	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "courses[0]: courseCode is required")
	assert.Contains(t, appErr.Message, "courses[0]: credits must be positive")
	assert.Contains(t, appErr.Message, "rooms[0]: capacity must be positive")
}

func TestTimetableServiceSaveDraft(t *testing.T) {
	txProv, mock := newTimetableTxMock(t)
	repo := &timetableRepoStub{}
	entries := &entryRepoStub{}
	svc := newTimetableServiceFixture(t, timetableFixtureConfig{
		timetables: repo,
		entries:    entries,
		tx:         txProv,
	})

	resp, err := svc.Generate(context.Background(), smallGenerateRequest())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	id, err := svc.Save(context.Background(), dto.SaveTimetableRequest{TimetableID: resp.TimetableID, Name: "fall-2026"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, repo.items, 1)
	assert.Equal(t, "fall-2026", repo.items[0].Name)
	assert.Equal(t, models.TimetableStatusDraft, repo.items[0].Status)
	assert.Equal(t, len(resp.Entries), len(entries.items[repo.items[0].ID]))

	// result is consumed on save
	_, err = svc.Save(context.Background(), dto.SaveTimetableRequest{TimetableID: resp.TimetableID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceSaveExpiredResult(t *testing.T) {
	svc := newTimetableServiceFixture(t, timetableFixtureConfig{})

	_, err := svc.Save(context.Background(), dto.SaveTimetableRequest{TimetableID: "nonexistent"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServicePublishLifecycle(t *testing.T) {
	repo := &timetableRepoStub{items: []models.Timetable{
		{ID: "tt-1", Name: "fall", Status: models.TimetableStatusDraft},
	}}
	svc := newTimetableServiceFixture(t, timetableFixtureConfig{timetables: repo})

	require.NoError(t, svc.Publish(context.Background(), "tt-1"))
	assert.Equal(t, models.TimetableStatusPublished, repo.items[0].Status)

	err := svc.Publish(context.Background(), "tt-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Archive(context.Background(), "tt-1"))
	assert.Equal(t, models.TimetableStatusArchived, repo.items[0].Status)
}

func TestTimetableServiceDeleteDraftOnly(t *testing.T) {
	repo := &timetableRepoStub{items: []models.Timetable{
		{ID: "tt-1", Status: models.TimetableStatusPublished},
		{ID: "tt-2", Status: models.TimetableStatusDraft},
	}}
	svc := newTimetableServiceFixture(t, timetableFixtureConfig{timetables: repo})

	err := svc.Delete(context.Background(), "tt-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), "tt-2"))
	require.Len(t, repo.items, 1)

	err = svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceAudit(t *testing.T) {
	svc := newTimetableServiceFixture(t, timetableFixtureConfig{})

	report, err := svc.Audit(context.Background(), dto.AuditRequest{
		Entries: []models.ScheduleEntry{
			{CourseCode: "CS101", TeacherID: "t1", RoomNumber: "R1", Day: "monday", StartTime: "09:00", EndTime: "10:00", Enrollment: 20},
			{CourseCode: "MA201", TeacherID: "t1", RoomNumber: "R2", Day: "monday", StartTime: "09:30", EndTime: "10:30", Enrollment: 20},
		},
	})
	require.NoError(t, err)
	assert.False(t, report.CanProceed)
	assert.Equal(t, 1, report.ByType[models.ConflictTeacher])
}

func TestTimetableServiceAsyncJobLifecycle(t *testing.T) {
	svc := newTimetableServiceFixture(t, timetableFixtureConfig{})
	queue := &queueStub{}
	svc.AttachQueue(queue)

	job, err := svc.GenerateAsync(context.Background(), smallGenerateRequest())
	require.NoError(t, err)
	assert.Equal(t, dto.JobStatusQueued, job.Status)
	require.Len(t, queue.jobs, 1)

	require.NoError(t, svc.ProcessJob(context.Background(), queue.jobs[0]))

	done, err := svc.Job(job.JobID)
	require.NoError(t, err)
	assert.Equal(t, dto.JobStatusCompleted, done.Status)
	assert.Equal(t, 100, done.Progress)
	require.NotNil(t, done.Result)
	assert.NotEmpty(t, done.Result.Entries)
}

func TestTimetableServiceAsyncWithoutQueue(t *testing.T) {
	svc := newTimetableServiceFixture(t, timetableFixtureConfig{})

	_, err := svc.GenerateAsync(context.Background(), smallGenerateRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestJobTrackerEvictsExpiredJobs(t *testing.T) {
	tracker := newJobTracker(time.Millisecond)
	tracker.Put(dto.GenerationJob{JobID: "j1", Status: dto.JobStatusQueued})

	_, ok := tracker.Get("j1")
	require.True(t, ok)

	time.Sleep(5 * time.Millisecond)

	_, ok = tracker.Get("j1")
	assert.False(t, ok, "expired jobs are evicted on read")

	// completion refreshes the deadline
	tracker = newJobTracker(time.Hour)
	tracker.Put(dto.GenerationJob{JobID: "j2", Status: dto.JobStatusQueued})
	tracker.Complete("j2", &dto.GenerateTimetableResponse{TimetableID: "tt-1"})
	job, ok := tracker.Get("j2")
	require.True(t, ok)
	assert.Equal(t, dto.JobStatusCompleted, job.Status)
	require.NotNil(t, job.Result)
}

func TestTimetableServiceProcessJobBadPayload(t *testing.T) {
	svc := newTimetableServiceFixture(t, timetableFixtureConfig{})

	err := svc.ProcessJob(context.Background(), jobs.Job{ID: "j1", Payload: "garbage"})
	assert.Error(t, err)
}

// --- Fixtures ---

type timetableFixtureConfig struct {
	timetables timetableRepository
	entries    timetableEntryRepository
	tx         txProvider
}

func newTimetableServiceFixture(t *testing.T, cfg timetableFixtureConfig) *TimetableService {
	t.Helper()
	timetables := cfg.timetables
	if timetables == nil {
		timetables = &timetableRepoStub{}
	}
	entries := cfg.entries
	if entries == nil {
		entries = &entryRepoStub{}
	}
	tx := cfg.tx
	if tx == nil {
		tx = noopTimetableTx{}
	}

	return NewTimetableService(
		timetables,
		entries,
		tx,
		validator.New(),
		zap.NewNop(),
		nil,
		nil,
		TimetableServiceConfig{
			Defaults: config.SchedulerConfig{
				WorkingDays:  []string{"monday", "tuesday"},
				DayStart:     "09:00",
				DayEnd:       "13:00",
				SlotDuration: 60,
			},
			ResultTTL: time.Hour,
		},
	)
}

func smallGenerateRequest() dto.GenerateTimetableRequest {
	return dto.GenerateTimetableRequest{
		Name: "test",
		Courses: []models.Course{
			{CourseCode: "CS101", CourseName: "Programming", Credits: 2, Department: "Computer Science", MaxStudents: 30},
			{CourseCode: "MA201", CourseName: "Calculus", Credits: 2, Department: "Mathematics", MaxStudents: 40},
		},
		Teachers: []models.Teacher{
			{TeacherID: "t1", Name: "Dr. Rao", Department: "Computer Science"},
			{TeacherID: "t2", Name: "Dr. Sen", Department: "Mathematics"},
		},
		Rooms: []models.Room{
			{RoomNumber: "R1", Capacity: 50},
			{RoomNumber: "R2", Capacity: 50},
		},
	}
}

type timetableRepoStub struct {
	items []models.Timetable
}

func (s *timetableRepoStub) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	timetable.ID = fmt.Sprintf("tt-%d", len(s.items)+1)
	timetable.Version = len(s.items) + 1
	s.items = append(s.items, *timetable)
	return nil
}

func (s *timetableRepoStub) List(ctx context.Context, status string, limit, offset int) ([]models.Timetable, int, error) {
	return s.items, len(s.items), nil
}

func (s *timetableRepoStub) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	for _, item := range s.items {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *timetableRepoStub) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus, meta types.JSONText) error {
	for idx := range s.items {
		if s.items[idx].ID == id {
			s.items[idx].Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *timetableRepoStub) Delete(ctx context.Context, id string) error {
	for idx, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type entryRepoStub struct {
	items map[string][]models.TimetableEntry
}

func (s *entryRepoStub) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
	if s.items == nil {
		s.items = make(map[string][]models.TimetableEntry)
	}
	for _, entry := range entries {
		s.items[entry.TimetableID] = append(s.items[entry.TimetableID], entry)
	}
	return nil
}

func (s *entryRepoStub) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableEntry, error) {
	return s.items[timetableID], nil
}

type noopTimetableTx struct{}

func (noopTimetableTx) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider unavailable")
}

type timetableTxMock struct {
	db *sqlx.DB
}

func newTimetableTxMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &timetableTxMock{db: sqlxdb}, mock
}

func (m *timetableTxMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return m.db.BeginTxx(ctx, opts)
}

type queueStub struct {
	jobs []jobs.Job
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}
