package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/dtu-portal/timetable-api/internal/dto"
	"github.com/dtu-portal/timetable-api/internal/models"
	appErrors "github.com/dtu-portal/timetable-api/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context) (*models.TimetableSettings, error)
	Upsert(ctx context.Context, settings *models.TimetableSettings) error
}

type assignedClassLister interface {
	ListDetails(ctx context.Context) ([]models.AssignedClassDetail, error)
}

type timetableEntryRepository interface {
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, entries []models.TimetableEntry) error
	DeleteAllWithTx(ctx context.Context, tx *sqlx.Tx) error
	DeleteAll(ctx context.Context) error
	List(ctx context.Context, filter models.EntryFilter) ([]models.TimetableEntry, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

const gridCachePattern = "timetable:grid:*"

// TimetableService orchestrates settings management, schedule generation, and
// grid queries. The scheduling algorithm itself is the pure BuildSchedule
// function; this service owns validation, persistence, and caching around it.
type TimetableService struct {
	settings    settingsRepository
	assignments assignedClassLister
	entries     timetableEntryRepository
	tx          txProvider
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTimetableService wires the service dependencies.
func NewTimetableService(
	settings settingsRepository,
	assignments assignedClassLister,
	entries timetableEntryRepository,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		settings:    settings,
		assignments: assignments,
		entries:     entries,
		tx:          tx,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Settings returns the current configuration.
func (s *TimetableService) Settings(ctx context.Context) (*models.TimetableSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable settings not configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable settings")
	}
	return settings, nil
}

// UpdateSettings validates and persists a configuration. Every violated rule
// is returned in details so the administrator can fix all of them in one
// pass; nothing is persisted when details is non-empty.
func (s *TimetableService) UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest) (*models.TimetableSettings, []string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}

	settings, details := s.buildSettings(req)
	if len(details) > 0 {
		return nil, details, appErrors.Clone(appErrors.ErrValidation, "timetable settings are not feasible")
	}

	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save timetable settings")
	}
	s.invalidateGridCache(ctx)
	return settings, nil, nil
}

// buildSettings converts the request into a model, folding parse errors into
// the same accumulated detail list the feasibility checks use.
func (s *TimetableService) buildSettings(req dto.UpdateSettingsRequest) (*models.TimetableSettings, []string) {
	var details []string

	start, err := models.ParseClock(req.StartTime)
	if err != nil {
		details = append(details, fmt.Sprintf("start time: %v", err))
	}
	end, err := models.ParseClock(req.EndTime)
	if err != nil {
		details = append(details, fmt.Sprintf("end time: %v", err))
	}

	parity := models.ParityOdd
	if req.ActiveSemesterType != "" {
		parity, err = models.ParseParity(req.ActiveSemesterType)
		if err != nil {
			details = append(details, err.Error())
		}
	}

	settings := &models.TimetableSettings{
		ID:                 models.SettingsRowID,
		StartTime:          start,
		EndTime:            end,
		LunchDuration:      req.LunchDuration,
		MinClassDuration:   req.MinClassDuration,
		MaxClassDuration:   req.MaxClassDuration,
		Periods:            req.Periods,
		WorkingDaysRaw:     req.WorkingDays,
		ActiveSemesterType: parity,
	}
	if len(details) > 0 {
		return nil, details
	}

	if errs := ValidateSettings(*settings); len(errs) > 0 {
		return nil, errs
	}
	return settings, nil
}

// Generate runs one scheduling pass over all assignments and persists the
// produced entries in a single transaction. Replace mode clears previously
// generated entries inside that same transaction; append mode leaves them.
// Per-assignment failures do not abort the batch: successful placements are
// committed and the failures reported alongside.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateResponse, []string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}
	mode := req.Mode
	if mode == "" {
		mode = dto.GenerateModeReplace
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "timetable settings must be configured before generating")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable settings")
	}

	if details := ValidateSettings(*settings); len(details) > 0 {
		return nil, details, appErrors.Clone(appErrors.ErrValidation, "timetable settings are not feasible")
	}

	assignments, err := s.assignments.ListDetails(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assigned classes")
	}
	if len(assignments) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no assigned classes to schedule")
	}

	result := BuildSchedule(*settings, assignments)

	if err := s.persist(ctx, mode, result.Entries); err != nil {
		return nil, nil, err
	}
	s.invalidateGridCache(ctx)
	s.metrics.ObserveGenerationRun(result.OK(), len(result.Entries))

	failures := make([]string, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, f.Message())
	}
	if len(failures) > 0 {
		s.logger.Warn("schedule generation left assignments unplaced",
			zap.Int("scheduled", len(result.Entries)),
			zap.Int("failed", len(failures)))
	}

	return &dto.GenerateResponse{
		Success:        result.OK(),
		Mode:           mode,
		ScheduledCount: len(result.Entries),
		Failures:       failures,
	}, nil, nil
}

func (s *TimetableService) persist(ctx context.Context, mode string, entries []models.TimetableEntry) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}

	if mode == dto.GenerateModeReplace {
		if err := s.entries.DeleteAllWithTx(ctx, tx); err != nil {
			_ = tx.Rollback()
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous timetable entries")
		}
	}
	if err := s.entries.BulkCreateWithTx(ctx, tx, entries); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable entries")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable entries")
	}
	return nil
}

// Reset clears all generated entries, independent of configuration.
func (s *TimetableService) Reset(ctx context.Context) error {
	if err := s.entries.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset timetable")
	}
	s.invalidateGridCache(ctx)
	return nil
}

// Entries returns the flat entry list matching the query, applying the same
// active-parity default as Grid.
func (s *TimetableService) Entries(ctx context.Context, query dto.GridQuery) ([]models.TimetableEntry, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := s.entryFilter(*settings, query)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable entries")
	}
	return entries, nil
}

// Grid renders the day-by-period timetable for the query, serving repeated
// reads through the cache. Period and lunch labels come from the same
// PeriodWindow calculator used during generation.
func (s *TimetableService) Grid(ctx context.Context, query dto.GridQuery) (*dto.GridResponse, error) {
	key := gridCacheKey(query)
	var cached dto.GridResponse
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := s.entryFilter(*settings, query)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable entries")
	}

	grid, err := buildGrid(*settings, entries)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, grid, 0)
	return grid, nil
}

func (s *TimetableService) entryFilter(settings models.TimetableSettings, query dto.GridQuery) (models.EntryFilter, error) {
	var filter models.EntryFilter

	if query.Branch != "" {
		branch, err := models.ParseBranch(query.Branch)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		filter.Branch = &branch
	}
	if query.Semester > 0 {
		semester := query.Semester
		filter.Semester = &semester
	} else {
		// Without an explicit semester the view follows the active parity
		// group configured by the administrator.
		parity := settings.ActiveSemesterType
		if parity != "" {
			filter.Parity = &parity
		}
	}
	filter.TeacherID = query.TeacherID
	return filter, nil
}

func buildGrid(settings models.TimetableSettings, entries []models.TimetableEntry) (*dto.GridResponse, error) {
	days, err := settings.WorkingDays()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored working days are invalid")
	}

	periods := make([]dto.PeriodLabel, 0, settings.Periods)
	for p := 1; p <= settings.Periods; p++ {
		start, end := PeriodWindow(settings, p)
		periods = append(periods, dto.PeriodLabel{
			Number:    p,
			StartTime: start.String(),
			EndTime:   end.String(),
		})
	}

	var lunch *dto.LunchLabel
	if start, end, ok := LunchWindow(settings); ok {
		lunch = &dto.LunchLabel{
			AfterPeriod: LunchBoundary(settings),
			StartTime:   start.String(),
			EndTime:     end.String(),
		}
	}

	gridDays := make([]dto.GridDay, len(days))
	for i, day := range days {
		gridDays[i] = dto.GridDay{Day: day, Slots: make([][]dto.GridCell, settings.Periods)}
	}
	for _, entry := range entries {
		dayIdx := days.Position(entry.Day)
		if dayIdx < 0 || entry.PeriodNumber < 1 || entry.PeriodNumber > settings.Periods {
			continue
		}
		cell := dto.GridCell{
			SubjectID:   entry.SubjectID,
			SubjectName: entry.SubjectName,
			SubjectCode: entry.SubjectCode,
			TeacherID:   entry.TeacherID,
			TeacherName: entry.TeacherName,
			Branch:      entry.Branch.String(),
			Semester:    entry.Semester,
		}
		slots := gridDays[dayIdx].Slots
		slots[entry.PeriodNumber-1] = append(slots[entry.PeriodNumber-1], cell)
	}

	return &dto.GridResponse{
		Days:         gridDays,
		Periods:      periods,
		Lunch:        lunch,
		ActiveParity: settings.ActiveSemesterType.String(),
	}, nil
}

func (s *TimetableService) invalidateGridCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, gridCachePattern); err != nil {
		s.logger.Warn("grid cache invalidation failed", zap.Error(err))
	}
}

func gridCacheKey(query dto.GridQuery) string {
	return fmt.Sprintf("timetable:grid:%s:%d:%s",
		strings.ToUpper(strings.TrimSpace(query.Branch)), query.Semester, query.TeacherID)
}
