package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/xXemran05khanXx/uniflow/internal/dto"
	"github.com/xXemran05khanXx/uniflow/internal/models"
	"github.com/xXemran05khanXx/uniflow/pkg/config"
	appErrors "github.com/xXemran05khanXx/uniflow/pkg/errors"
	"github.com/xXemran05khanXx/uniflow/pkg/export"
	"github.com/xXemran05khanXx/uniflow/pkg/jobs"
)

const (
	algorithmGreedy = "greedy"

	jobTypeGeneration = "timetable_generation"

	cacheKeyPrefix = "timetable:"
)

type timetableRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	List(ctx context.Context, status string, limit, offset int) ([]models.Timetable, int, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus, meta types.JSONText) error
	Delete(ctx context.Context, id string) error
}

type timetableEntryRepository interface {
	UpsertBatch(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableEntry, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type generationQueue interface {
	Enqueue(job jobs.Job) error
}

// TimetableService orchestrates generation, auditing and persistence of
// university timetables.
type TimetableService struct {
	timetables timetableRepository
	entries    timetableEntryRepository
	tx         txProvider
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	cache      *CacheService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter

	defaults config.SchedulerConfig
	policy   ClashPolicy

	store *resultStore
	jobs  *jobTracker
	queue generationQueue
}

// TimetableServiceConfig governs generation defaults and result retention.
type TimetableServiceConfig struct {
	Defaults  config.SchedulerConfig
	Audit     config.AuditConfig
	ResultTTL time.Duration
}

// NewTimetableService wires orchestrator dependencies.
func NewTimetableService(
	timetables timetableRepository,
	entries timetableEntryRepository,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cache *CacheService,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 30 * time.Minute
	}
	if len(cfg.Defaults.WorkingDays) == 0 {
		cfg.Defaults.WorkingDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	}
	if cfg.Defaults.DayStart == "" {
		cfg.Defaults.DayStart = "08:00"
	}
	if cfg.Defaults.DayEnd == "" {
		cfg.Defaults.DayEnd = "18:00"
	}
	if cfg.Defaults.SlotDuration <= 0 {
		cfg.Defaults.SlotDuration = 60
	}
	if cfg.Defaults.MaxIterations <= 0 {
		cfg.Defaults.MaxIterations = 1000000
	}

	return &TimetableService{
		timetables: timetables,
		entries:    entries,
		tx:         tx,
		validator:  validate,
		logger:     logger,
		metrics:    metrics,
		cache:      cache,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		defaults:   cfg.Defaults,
		policy: ClashPolicy{
			AllowWeekends: cfg.Audit.AllowWeekends,
			MinEnrollment: cfg.Audit.MinEnrollment,
			MinDuration:   cfg.Audit.MinDuration,
			MaxDuration:   cfg.Audit.MaxDuration,
		},
		store: newResultStore(cfg.ResultTTL),
		jobs:  newJobTracker(cfg.ResultTTL),
	}
}

// AttachQueue connects the asynchronous generation queue. Without a queue,
// async requests are rejected.
func (s *TimetableService) AttachQueue(queue generationQueue) {
	s.queue = queue
}

// Generate runs the full pipeline synchronously: validate, build the slot
// universe, place sessions, audit the result and compute quality numbers.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	if err := validateEntities(req); err != nil {
		return nil, err
	}

	cfg, err := s.resolveConfig(req.Config)
	if err != nil {
		return nil, err
	}

	slots := BuildTimeSlots(cfg.WorkingDays, cfg.WorkingHours.Start, cfg.WorkingHours.End, cfg.SlotDuration, cfg.BreakDuration)
	if len(slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "working hours configuration produces no usable time slots")
	}

	start := time.Now()
	scheduler := NewGreedyScheduler(cfg.MaxIterations, s.logger)
	placed, unscheduled, err := scheduler.Schedule(ctx, req.Courses, req.Teachers, req.Rooms, slots)
	if err != nil {
		s.metrics.ObserveGeneration("cancelled", len(placed), len(unscheduled), time.Since(start))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "timetable generation interrupted")
	}

	detector := NewClashDetector(s.policy, s.logger)
	report := detector.Detect(placed, nil)

	stats := BuildStatistics(placed, req.Teachers, req.Rooms, slots)
	rate := SchedulingRate(placed, len(req.Courses))
	quality := QualityScore(rate, len(report.Conflicts))

	result := generationResult{
		TimetableID: uuid.NewString(),
		Name:        req.Name,
		Entries:     placed,
		Unscheduled: unscheduled,
		Report:      report,
		Statistics:  stats,
		Rate:        rate,
		Quality:     quality,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(result)

	s.metrics.ObserveGeneration("success", len(placed), len(unscheduled), time.Since(start))
	s.metrics.RecordConflicts(report.ByType)
	s.logger.Info("timetable generated",
		zap.String("timetable_id", result.TimetableID),
		zap.Int("entries", len(placed)),
		zap.Int("unscheduled", len(unscheduled)),
		zap.Int("conflicts", len(report.Conflicts)),
		zap.Float64("quality_score", quality),
	)

	return resultToResponse(result), nil
}

// GenerateAsync queues a generation run and returns a trackable job.
func (s *TimetableService) GenerateAsync(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerationJob, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "asynchronous generation is not available")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	if err := validateEntities(req); err != nil {
		return nil, err
	}

	job := dto.GenerationJob{
		JobID:  uuid.NewString(),
		Status: dto.JobStatusQueued,
	}
	s.jobs.Put(job)

	if err := s.queue.Enqueue(jobs.Job{ID: job.JobID, Type: jobTypeGeneration, Payload: req}); err != nil {
		s.jobs.Fail(job.JobID, "queue unavailable")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue generation job")
	}
	return &job, nil
}

// ProcessJob is the queue handler for asynchronous generation.
func (s *TimetableService) ProcessJob(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.GenerateTimetableRequest)
	if !ok {
		s.jobs.Fail(job.ID, "malformed job payload")
		return fmt.Errorf("job %s carries unexpected payload %T", job.ID, job.Payload)
	}

	s.jobs.SetStatus(job.ID, dto.JobStatusRunning, 10)
	resp, err := s.Generate(ctx, req)
	if err != nil {
		s.jobs.Fail(job.ID, err.Error())
		return err
	}
	s.jobs.Complete(job.ID, resp)
	return nil
}

// Job returns the current state of an asynchronous generation job.
func (s *TimetableService) Job(jobID string) (*dto.GenerationJob, error) {
	if jobID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "job id is required")
	}
	job, ok := s.jobs.Get(jobID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "generation job not found")
	}
	return &job, nil
}

// Audit runs the clash detectors over caller-supplied entries without
// touching stored state.
func (s *TimetableService) Audit(ctx context.Context, req dto.AuditRequest) (*models.ConflictReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid audit payload")
	}

	detector := NewClashDetector(s.policy, s.logger)
	report := detector.Detect(req.Entries, req.Existing)
	s.metrics.RecordConflicts(report.ByType)
	return &report, nil
}

// Save persists an in-memory generation result as a versioned draft.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveTimetableRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save timetable payload")
	}
	result, ok := s.store.Get(req.TimetableID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "generation result not found or expired")
	}
	if !result.Report.CanProceed {
		return "", appErrors.Clone(appErrors.ErrConflict, "timetable contains critical conflicts")
	}
	if s.tx == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	name := req.Name
	if name == "" {
		name = result.Name
	}
	if name == "" {
		name = "timetable"
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	metaPayload := map[string]any{
		"algorithm":   algorithmGreedy,
		"generated":   result.RequestedAt,
		"statistics":  result.Statistics,
		"unscheduled": result.Unscheduled,
		"audit":       result.Report.Summary,
	}
	metaBytes, marshalErr := json.Marshal(metaPayload)
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable metadata")
		return "", err
	}

	record := &models.Timetable{
		Name:           name,
		Status:         models.TimetableStatusDraft,
		QualityScore:   result.Quality,
		SchedulingRate: result.Rate,
		Meta:           types.JSONText(metaBytes),
	}
	if err = s.timetables.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
		return "", err
	}

	rows := make([]models.TimetableEntry, 0, len(result.Entries))
	for _, entry := range result.Entries {
		rows = append(rows, models.TimetableEntry{
			TimetableID: record.ID,
			CourseCode:  entry.CourseCode,
			CourseName:  entry.CourseName,
			SessionType: string(entry.SessionType),
			TeacherID:   entry.TeacherID,
			TeacherName: entry.TeacherName,
			RoomNumber:  entry.RoomNumber,
			Day:         entry.Day,
			StartTime:   entry.StartTime,
			EndTime:     entry.EndTime,
			Duration:    entry.Duration,
			Enrollment:  entry.Enrollment,
		})
	}
	if err = s.entries.UpsertBatch(ctx, tx, rows); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable entries")
		return "", err
	}

	if req.Publish {
		if result.Report.RequiresReview {
			err = appErrors.Clone(appErrors.ErrConflict, "timetable requires review before publishing")
			return "", err
		}
		if err = s.timetables.UpdateStatus(ctx, tx, record.ID, models.TimetableStatusPublished, nil); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return "", err
	}

	s.store.Delete(req.TimetableID)
	_ = s.cache.Invalidate(ctx, cacheKeyPrefix+"*")
	return record.ID, nil
}

// List returns stored timetables with paging metadata.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	status := strings.ToUpper(strings.TrimSpace(query.Status))
	list, total, err := s.timetables.List(ctx, status, pageSize, offset)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return list, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// TimetableDetail bundles a stored timetable with its entries.
type TimetableDetail struct {
	Timetable models.Timetable        `json:"timetable"`
	Entries   []models.TimetableEntry `json:"entries"`
}

// Get loads a stored timetable with its entries, consulting the cache for
// published versions.
func (s *TimetableService) Get(ctx context.Context, id string) (*TimetableDetail, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}

	cacheKey := cacheKeyPrefix + id
	var cached TimetableDetail
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	entries, err := s.entries.ListByTimetable(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable entries")
	}

	detail := &TimetableDetail{Timetable: *timetable, Entries: entries}
	if timetable.Status == models.TimetableStatusPublished {
		_ = s.cache.Set(ctx, cacheKey, detail, 0)
	}
	return detail, nil
}

// Publish promotes a draft timetable to the published state.
func (s *TimetableService) Publish(ctx context.Context, id string) error {
	record, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if record.Status != models.TimetableStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be published")
	}
	if err := s.timetables.UpdateStatus(ctx, nil, id, models.TimetableStatusPublished, nil); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
	}
	_ = s.cache.Invalidate(ctx, cacheKeyPrefix+id)
	return nil
}

// Archive moves a published timetable out of circulation.
func (s *TimetableService) Archive(ctx context.Context, id string) error {
	record, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if record.Status != models.TimetableStatusPublished {
		return appErrors.Clone(appErrors.ErrConflict, "only published timetables can be archived")
	}
	if err := s.timetables.UpdateStatus(ctx, nil, id, models.TimetableStatusArchived, nil); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive timetable")
	}
	_ = s.cache.Invalidate(ctx, cacheKeyPrefix+id)
	return nil
}

// Delete removes a draft timetable version.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	record, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if record.Status != models.TimetableStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be deleted")
	}
	if err := s.timetables.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	return nil
}

// Export renders a stored timetable as CSV or PDF.
func (s *TimetableService) Export(ctx context.Context, id, format string) ([]byte, string, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Day", "Start", "End", "Course", "Session", "Teacher", "Room", "Enrollment"},
	}
	for _, entry := range detail.Entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":        entry.Day,
			"Start":      entry.StartTime,
			"End":        entry.EndTime,
			"Course":     fmt.Sprintf("%s %s", entry.CourseCode, entry.CourseName),
			"Session":    entry.SessionType,
			"Teacher":    entry.TeacherName,
			"Room":       entry.RoomNumber,
			"Enrollment": fmt.Sprintf("%d", entry.Enrollment),
		})
	}

	switch strings.ToLower(format) {
	case "csv", "":
		payload, renderErr := s.csv.Render(dataset)
		if renderErr != nil {
			return nil, "", appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, renderErr := s.pdf.Render(dataset, detail.Timetable.Name)
		if renderErr != nil {
			return nil, "", appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *TimetableService) resolveConfig(cfg dto.GenerationConfig) (dto.GenerationConfig, error) {
	switch cfg.Algorithm {
	case "", algorithmGreedy:
		cfg.Algorithm = algorithmGreedy
	default:
		return cfg, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("algorithm %q is not available", cfg.Algorithm))
	}

	if len(cfg.WorkingDays) == 0 {
		cfg.WorkingDays = s.defaults.WorkingDays
	}
	if cfg.WorkingHours.Start == "" {
		cfg.WorkingHours.Start = s.defaults.DayStart
	}
	if cfg.WorkingHours.End == "" {
		cfg.WorkingHours.End = s.defaults.DayEnd
	}
	if cfg.SlotDuration <= 0 {
		cfg.SlotDuration = s.defaults.SlotDuration
	}
	if cfg.BreakDuration < 0 {
		cfg.BreakDuration = 0
	} else if cfg.BreakDuration == 0 {
		cfg.BreakDuration = s.defaults.BreakDuration
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = s.defaults.MaxIterations
	}
	return cfg, nil
}

// validateEntities aggregates per-record structural problems so the caller
// sees every issue at once instead of fixing them one by one.
func validateEntities(req dto.GenerateTimetableRequest) error {
	var problems []string

	for i, course := range req.Courses {
		if course.CourseCode == "" {
			problems = append(problems, fmt.Sprintf("courses[%d]: courseCode is required", i))
		}
		if course.CourseName == "" {
			problems = append(problems, fmt.Sprintf("courses[%d]: courseName is required", i))
		}
		if course.Credits <= 0 {
			problems = append(problems, fmt.Sprintf("courses[%d]: credits must be positive", i))
		}
		if course.MaxStudents <= 0 {
			problems = append(problems, fmt.Sprintf("courses[%d]: maxStudents must be positive", i))
		}
	}
	for i, teacher := range req.Teachers {
		if teacher.TeacherID == "" {
			problems = append(problems, fmt.Sprintf("teachers[%d]: teacherId is required", i))
		}
		if teacher.Name == "" {
			problems = append(problems, fmt.Sprintf("teachers[%d]: name is required", i))
		}
	}
	for i, room := range req.Rooms {
		if room.RoomNumber == "" {
			problems = append(problems, fmt.Sprintf("rooms[%d]: roomNumber is required", i))
		}
		if room.Capacity <= 0 {
			problems = append(problems, fmt.Sprintf("rooms[%d]: capacity must be positive", i))
		}
	}

	if len(problems) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func resultToResponse(result generationResult) *dto.GenerateTimetableResponse {
	return &dto.GenerateTimetableResponse{
		TimetableID:    result.TimetableID,
		Entries:        result.Entries,
		Unscheduled:    result.Unscheduled,
		Report:         result.Report,
		Statistics:     result.Statistics,
		SchedulingRate: result.Rate,
		QualityScore:   result.Quality,
	}
}

// --- Generation result cache ---

type generationResult struct {
	TimetableID string
	Name        string
	Entries     []models.ScheduleEntry
	Unscheduled []models.UnscheduledSession
	Report      models.ConflictReport
	Statistics  models.Statistics
	Rate        float64
	Quality     float64
	RequestedAt time.Time
}

type resultStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]generationResult
}

func newResultStore(ttl time.Duration) *resultStore {
	return &resultStore{
		ttl:   ttl,
		items: make(map[string]generationResult),
	}
}

func (s *resultStore) Save(result generationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[result.TimetableID] = result
}

func (s *resultStore) Get(id string) (generationResult, bool) {
	s.mu.RLock()
	result, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return generationResult{}, false
	}
	if time.Since(result.RequestedAt) > s.ttl {
		s.Delete(id)
		return generationResult{}, false
	}
	return result, true
}

func (s *resultStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// --- Job tracking ---

type trackedJob struct {
	job     dto.GenerationJob
	touched time.Time
}

// jobTracker holds asynchronous job state with the same TTL-on-read eviction
// as resultStore, so finished jobs do not pin their results forever.
type jobTracker struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]trackedJob
}

func newJobTracker(ttl time.Duration) *jobTracker {
	return &jobTracker{
		ttl:   ttl,
		items: make(map[string]trackedJob),
	}
}

func (t *jobTracker) Put(job dto.GenerationJob) {
	t.mu.Lock()
	t.items[job.JobID] = trackedJob{job: job, touched: time.Now()}
	t.mu.Unlock()
}

func (t *jobTracker) Get(id string) (dto.GenerationJob, bool) {
	t.mu.RLock()
	tracked, ok := t.items[id]
	t.mu.RUnlock()
	if !ok {
		return dto.GenerationJob{}, false
	}
	if t.ttl > 0 && time.Since(tracked.touched) > t.ttl {
		t.mu.Lock()
		delete(t.items, id)
		t.mu.Unlock()
		return dto.GenerationJob{}, false
	}
	return tracked.job, true
}

func (t *jobTracker) update(id string, mutate func(*dto.GenerationJob)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tracked, ok := t.items[id]; ok {
		mutate(&tracked.job)
		tracked.touched = time.Now()
		t.items[id] = tracked
	}
}

func (t *jobTracker) SetStatus(id, status string, progress int) {
	t.update(id, func(job *dto.GenerationJob) {
		job.Status = status
		job.Progress = progress
	})
}

func (t *jobTracker) Complete(id string, result *dto.GenerateTimetableResponse) {
	t.update(id, func(job *dto.GenerationJob) {
		job.Status = dto.JobStatusCompleted
		job.Progress = 100
		job.Result = result
		job.Error = ""
	})
}

func (t *jobTracker) Fail(id, message string) {
	t.update(id, func(job *dto.GenerationJob) {
		job.Status = dto.JobStatusFailed
		job.Error = message
	})
}
