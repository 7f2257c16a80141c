package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtu-portal/timetable-api/internal/dto"
	"github.com/dtu-portal/timetable-api/internal/models"
	appErrors "github.com/dtu-portal/timetable-api/pkg/errors"
)

type settingsRepoStub struct {
	settings  *models.TimetableSettings
	getErr    error
	upserted  *models.TimetableSettings
	upsertErr error
}

func (s *settingsRepoStub) Get(ctx context.Context) (*models.TimetableSettings, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.settings, nil
}

func (s *settingsRepoStub) Upsert(ctx context.Context, settings *models.TimetableSettings) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = settings
	return nil
}

type assignedListerStub struct {
	details []models.AssignedClassDetail
	err     error
}

func (s *assignedListerStub) ListDetails(ctx context.Context) ([]models.AssignedClassDetail, error) {
	return s.details, s.err
}

type entryRepoStub struct {
	bulkCreated     []models.TimetableEntry
	bulkErr         error
	deletedWithTx   bool
	deleteTxErr     error
	deletedAll      bool
	deleteAllErr    error
	listed          []models.TimetableEntry
	listErr         error
	lastListFilter  models.EntryFilter
	listCalls       int
}

func (s *entryRepoStub) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, entries []models.TimetableEntry) error {
	if s.bulkErr != nil {
		return s.bulkErr
	}
	s.bulkCreated = entries
	return nil
}

func (s *entryRepoStub) DeleteAllWithTx(ctx context.Context, tx *sqlx.Tx) error {
	if s.deleteTxErr != nil {
		return s.deleteTxErr
	}
	s.deletedWithTx = true
	return nil
}

func (s *entryRepoStub) DeleteAll(ctx context.Context) error {
	if s.deleteAllErr != nil {
		return s.deleteAllErr
	}
	s.deletedAll = true
	return nil
}

func (s *entryRepoStub) List(ctx context.Context, filter models.EntryFilter) ([]models.TimetableEntry, error) {
	s.listCalls++
	s.lastListFilter = filter
	return s.listed, s.listErr
}

func newMockTxProvider(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func serviceSettings(t *testing.T) *models.TimetableSettings {
	t.Helper()
	settings := engineSettings(t)
	return &settings
}

func validUpdateRequest() dto.UpdateSettingsRequest {
	return dto.UpdateSettingsRequest{
		StartTime:          "09:00",
		EndTime:            "17:00",
		LunchDuration:      60,
		MinClassDuration:   40,
		MaxClassDuration:   60,
		Periods:            8,
		WorkingDays:        "MTWTF",
		ActiveSemesterType: "even",
	}
}

func TestUpdateSettingsPersistsValidConfiguration(t *testing.T) {
	settingsRepo := &settingsRepoStub{}
	svc := NewTimetableService(settingsRepo, nil, nil, nil, nil, nil, nil, nil)

	saved, details, err := svc.UpdateSettings(context.Background(), validUpdateRequest())
	require.NoError(t, err)
	assert.Empty(t, details)
	require.NotNil(t, settingsRepo.upserted)
	assert.Equal(t, models.SettingsRowID, saved.ID)
	assert.Equal(t, "09:00", saved.StartTime.String())
	assert.Equal(t, models.ParityEven, saved.ActiveSemesterType)
	assert.Equal(t, "MTWTF", saved.WorkingDaysRaw)
}

func TestUpdateSettingsReturnsAllViolations(t *testing.T) {
	settingsRepo := &settingsRepoStub{}
	svc := NewTimetableService(settingsRepo, nil, nil, nil, nil, nil, nil, nil)

	req := validUpdateRequest()
	req.MinClassDuration = 70
	req.MaxClassDuration = 60
	req.Periods = 16

	saved, details, err := svc.UpdateSettings(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, saved)
	assert.Nil(t, settingsRepo.upserted, "invalid settings must not be persisted")
	require.Len(t, details, 2)
	assert.Contains(t, details[0], "exceeds maximum")
	assert.Contains(t, details[1], "outside the allowed range")

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUpdateSettingsRejectsMalformedClock(t *testing.T) {
	svc := NewTimetableService(&settingsRepoStub{}, nil, nil, nil, nil, nil, nil, nil)

	req := validUpdateRequest()
	req.StartTime = "9 o'clock"

	_, details, err := svc.UpdateSettings(context.Background(), req)
	require.Error(t, err)
	require.Len(t, details, 1)
	assert.Contains(t, details[0], "start time")
}

func TestGenerateReplaceClearsThenPersists(t *testing.T) {
	db, mock := newMockTxProvider(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	entryRepo := &entryRepoStub{}
	svc := NewTimetableService(
		&settingsRepoStub{settings: serviceSettings(t)},
		&assignedListerStub{details: []models.AssignedClassDetail{
			assignment("a1", "t1", 1, models.BranchAIML),
			assignment("a2", "t2", 1, models.BranchCSE),
		}},
		entryRepo,
		db,
		nil, nil, nil, nil,
	)

	resp, details, err := svc.Generate(context.Background(), dto.GenerateRequest{})
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.True(t, resp.Success)
	assert.Equal(t, dto.GenerateModeReplace, resp.Mode)
	assert.Equal(t, 2, resp.ScheduledCount)
	assert.Empty(t, resp.Failures)

	assert.True(t, entryRepo.deletedWithTx, "replace mode clears previous entries in the transaction")
	assert.Len(t, entryRepo.bulkCreated, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateAppendKeepsExistingEntries(t *testing.T) {
	db, mock := newMockTxProvider(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	entryRepo := &entryRepoStub{}
	svc := NewTimetableService(
		&settingsRepoStub{settings: serviceSettings(t)},
		&assignedListerStub{details: []models.AssignedClassDetail{
			assignment("a1", "t1", 1, models.BranchAIML),
		}},
		entryRepo,
		db,
		nil, nil, nil, nil,
	)

	resp, _, err := svc.Generate(context.Background(), dto.GenerateRequest{Mode: dto.GenerateModeAppend})
	require.NoError(t, err)
	assert.Equal(t, dto.GenerateModeAppend, resp.Mode)
	assert.False(t, entryRepo.deletedWithTx)
	assert.Len(t, entryRepo.bulkCreated, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGeneratePartialFailureStillPersists(t *testing.T) {
	db, mock := newMockTxProvider(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	settings := serviceSettings(t)
	settings.WorkingDaysRaw = "Mon"
	settings.Periods = 1
	settings.StartTime = 0
	settings.EndTime = 100
	settings.LunchDuration = 0
	settings.MinClassDuration = 1
	settings.MaxClassDuration = 600

	// One day, one period: the second class for the same cohort cannot fit.
	entryRepo := &entryRepoStub{}
	svc := NewTimetableService(
		&settingsRepoStub{settings: settings},
		&assignedListerStub{details: []models.AssignedClassDetail{
			assignment("a1", "t1", 1, models.BranchAIML),
			assignment("a2", "t2", 1, models.BranchAIML),
		}},
		entryRepo,
		db,
		nil, nil, nil, nil,
	)

	resp, details, err := svc.Generate(context.Background(), dto.GenerateRequest{})
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.False(t, resp.Success)
	assert.Equal(t, 1, resp.ScheduledCount)
	require.Len(t, resp.Failures, 1)
	assert.Contains(t, resp.Failures[0], "could not schedule class for")

	assert.Len(t, entryRepo.bulkCreated, 1, "successful placements are persisted despite failures")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateInfeasibleSettingsAbortsBeforePersistence(t *testing.T) {
	settings := serviceSettings(t)
	settings.MinClassDuration = 500

	entryRepo := &entryRepoStub{}
	svc := NewTimetableService(
		&settingsRepoStub{settings: settings},
		&assignedListerStub{},
		entryRepo,
		nil,
		nil, nil, nil, nil,
	)

	resp, details, err := svc.Generate(context.Background(), dto.GenerateRequest{})
	require.Error(t, err)
	assert.Nil(t, resp)
	require.NotEmpty(t, details)
	assert.Nil(t, entryRepo.bulkCreated)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestGenerateRequiresConfiguredSettings(t *testing.T) {
	svc := NewTimetableService(
		&settingsRepoStub{getErr: sql.ErrNoRows},
		&assignedListerStub{},
		&entryRepoStub{},
		nil,
		nil, nil, nil, nil,
	)

	_, _, err := svc.Generate(context.Background(), dto.GenerateRequest{})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestGenerateRequiresAssignedClasses(t *testing.T) {
	svc := NewTimetableService(
		&settingsRepoStub{settings: serviceSettings(t)},
		&assignedListerStub{details: nil},
		&entryRepoStub{},
		nil,
		nil, nil, nil, nil,
	)

	_, _, err := svc.Generate(context.Background(), dto.GenerateRequest{})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestGenerateRollsBackOnPersistError(t *testing.T) {
	db, mock := newMockTxProvider(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewTimetableService(
		&settingsRepoStub{settings: serviceSettings(t)},
		&assignedListerStub{details: []models.AssignedClassDetail{
			assignment("a1", "t1", 1, models.BranchAIML),
		}},
		&entryRepoStub{bulkErr: errors.New("insert failed")},
		db,
		nil, nil, nil, nil,
	)

	_, _, err := svc.Generate(context.Background(), dto.GenerateRequest{})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateRejectsUnknownMode(t *testing.T) {
	svc := NewTimetableService(&settingsRepoStub{}, nil, nil, nil, nil, nil, nil, nil)

	_, _, err := svc.Generate(context.Background(), dto.GenerateRequest{Mode: "merge"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestResetClearsEntries(t *testing.T) {
	entryRepo := &entryRepoStub{}
	svc := NewTimetableService(&settingsRepoStub{}, nil, entryRepo, nil, nil, nil, nil, nil)

	require.NoError(t, svc.Reset(context.Background()))
	assert.True(t, entryRepo.deletedAll)
}

func TestSettingsMapsMissingRowToNotFound(t *testing.T) {
	svc := NewTimetableService(&settingsRepoStub{getErr: sql.ErrNoRows}, nil, nil, nil, nil, nil, nil, nil)

	_, err := svc.Settings(context.Background())
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestEntriesDefaultsToActiveParity(t *testing.T) {
	entryRepo := &entryRepoStub{}
	svc := NewTimetableService(&settingsRepoStub{settings: serviceSettings(t)}, nil, entryRepo, nil, nil, nil, nil, nil)

	_, err := svc.Entries(context.Background(), dto.GridQuery{})
	require.NoError(t, err)
	require.NotNil(t, entryRepo.lastListFilter.Parity)
	assert.Equal(t, models.ParityOdd, *entryRepo.lastListFilter.Parity)
	assert.Nil(t, entryRepo.lastListFilter.Semester)
}

func TestEntriesExplicitSemesterOverridesParity(t *testing.T) {
	entryRepo := &entryRepoStub{}
	svc := NewTimetableService(&settingsRepoStub{settings: serviceSettings(t)}, nil, entryRepo, nil, nil, nil, nil, nil)

	_, err := svc.Entries(context.Background(), dto.GridQuery{Semester: 4, Branch: "aiml"})
	require.NoError(t, err)
	require.NotNil(t, entryRepo.lastListFilter.Semester)
	assert.Equal(t, 4, *entryRepo.lastListFilter.Semester)
	assert.Nil(t, entryRepo.lastListFilter.Parity)
	require.NotNil(t, entryRepo.lastListFilter.Branch)
	assert.Equal(t, models.BranchAIML, *entryRepo.lastListFilter.Branch)
}

func TestEntriesRejectsUnknownBranch(t *testing.T) {
	svc := NewTimetableService(&settingsRepoStub{settings: serviceSettings(t)}, nil, &entryRepoStub{}, nil, nil, nil, nil, nil)

	_, err := svc.Entries(context.Background(), dto.GridQuery{Branch: "EEE"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestGridRendersLabelsAndCells(t *testing.T) {
	settings := serviceSettings(t)
	entry := models.TimetableEntry{
		AssignedClassID: "a1",
		TeacherID:       "t1",
		TeacherName:     "Prof. t1",
		SubjectID:       "subj-a1",
		SubjectName:     "Subject a1",
		SubjectCode:     "AIML-1a1",
		Semester:        1,
		Branch:          models.BranchAIML,
		Day:             "Mon",
		PeriodNumber:    5,
	}
	entryRepo := &entryRepoStub{listed: []models.TimetableEntry{entry}}
	svc := NewTimetableService(&settingsRepoStub{settings: settings}, nil, entryRepo, nil, nil, nil, nil, nil)

	grid, err := svc.Grid(context.Background(), dto.GridQuery{})
	require.NoError(t, err)

	assert.Equal(t, "odd", grid.ActiveParity)
	require.Len(t, grid.Days, 2)
	assert.Equal(t, "Mon", grid.Days[0].Day)
	require.Len(t, grid.Periods, settings.Periods)
	assert.Equal(t, "09:00", grid.Periods[0].StartTime)

	require.NotNil(t, grid.Lunch)
	assert.Equal(t, 4, grid.Lunch.AfterPeriod)
	// 4 periods of 52 min precede lunch: 09:00 + 208 min.
	assert.Equal(t, "12:28", grid.Lunch.StartTime)
	assert.Equal(t, "13:28", grid.Lunch.EndTime)

	require.Len(t, grid.Days[0].Slots, settings.Periods)
	require.Len(t, grid.Days[0].Slots[4], 1)
	assert.Equal(t, "Prof. t1", grid.Days[0].Slots[4][0].TeacherName)
}

func TestGridServedFromCache(t *testing.T) {
	cached := dto.GridResponse{ActiveParity: "odd"}
	cacheSvc := NewCacheService(&cacheRepoStub{stored: map[string]interface{}{
		"timetable:grid::0:": &cached,
	}}, nil, 0, nil, true)

	entryRepo := &entryRepoStub{}
	svc := NewTimetableService(&settingsRepoStub{settings: serviceSettings(t)}, nil, entryRepo, nil, cacheSvc, nil, nil, nil)

	grid, err := svc.Grid(context.Background(), dto.GridQuery{})
	require.NoError(t, err)
	assert.Equal(t, "odd", grid.ActiveParity)
	assert.Zero(t, entryRepo.listCalls, "cache hit must not touch the database")
}
