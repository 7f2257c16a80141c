package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtu-portal/timetable-api/internal/dto"
	"github.com/dtu-portal/timetable-api/internal/models"
	appErrors "github.com/dtu-portal/timetable-api/pkg/errors"
)

type gridProviderStub struct {
	settings *models.TimetableSettings
	grid     *dto.GridResponse
	err      error
}

func (s *gridProviderStub) Settings(ctx context.Context) (*models.TimetableSettings, error) {
	return s.settings, s.err
}

func (s *gridProviderStub) Grid(ctx context.Context, query dto.GridQuery) (*dto.GridResponse, error) {
	return s.grid, s.err
}

func exportGrid() *dto.GridResponse {
	return &dto.GridResponse{
		Days: []dto.GridDay{
			{
				Day: "Mon",
				Slots: [][]dto.GridCell{
					{{SubjectCode: "CS101", SubjectName: "Algorithms", TeacherName: "Prof. Rao"}},
					{},
				},
			},
			{Day: "Tue", Slots: [][]dto.GridCell{{}, {}}},
		},
		Periods: []dto.PeriodLabel{
			{Number: 1, StartTime: "10:00", EndTime: "11:00"},
			{Number: 2, StartTime: "12:00", EndTime: "13:00"},
		},
		Lunch:        &dto.LunchLabel{AfterPeriod: 1, StartTime: "11:00", EndTime: "12:00"},
		ActiveParity: "odd",
	}
}

func TestRenderCSVPlacesLunchColumnAtBoundary(t *testing.T) {
	svc := NewExportService(&gridProviderStub{grid: exportGrid()}, nil, nil, nil)

	file, err := svc.Render(context.Background(), dto.GridQuery{}, "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "timetable.csv", file.Filename)

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Day,Period 1 (10:00-11:00),Lunch (11:00-12:00),Period 2 (12:00-13:00)", lines[0])
	assert.Equal(t, "Mon,CS101 Algorithms (Prof. Rao),LUNCH,", lines[1])
	assert.Equal(t, "Tue,,LUNCH,", lines[2])
}

func TestRenderPDFProducesDocument(t *testing.T) {
	svc := NewExportService(&gridProviderStub{grid: exportGrid()}, nil, nil, nil)

	file, err := svc.Render(context.Background(), dto.GridQuery{Branch: "aiml", Semester: 3}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "timetable.pdf", file.Filename)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&gridProviderStub{grid: exportGrid()}, nil, nil, nil)

	_, err := svc.Render(context.Background(), dto.GridQuery{}, "xlsx")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRenderPropagatesGridError(t *testing.T) {
	svc := NewExportService(&gridProviderStub{err: appErrors.Clone(appErrors.ErrNotFound, "timetable settings not configured")}, nil, nil, nil)

	_, err := svc.Render(context.Background(), dto.GridQuery{}, "csv")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSlotsWithSeveralCellsJoinInOneCell(t *testing.T) {
	grid := exportGrid()
	grid.Days[0].Slots[0] = append(grid.Days[0].Slots[0],
		dto.GridCell{SubjectCode: "DS201", SubjectName: "Data Structures", TeacherName: "Prof. Iyer"})
	svc := NewExportService(&gridProviderStub{grid: grid}, nil, nil, nil)

	file, err := svc.Render(context.Background(), dto.GridQuery{}, "csv")
	require.NoError(t, err)
	assert.Contains(t, string(file.Content),
		"CS101 Algorithms (Prof. Rao) / DS201 Data Structures (Prof. Iyer)")
}
