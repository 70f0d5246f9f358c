package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"letsassist/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var projectColumnNames = []string{
	"id", "title", "description", "location", "event_type", "schedule",
	"status", "is_private", "organization_id", "creator_id",
	"cancelled_at", "cancellation_reason", "created_at", "updated_at",
}

const oneTimeScheduleJSON = `{"oneTime":{"date":"2026-06-10","startTime":"09:00","endTime":"12:00","volunteers":5}}`

func TestProjectRepository_Create(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		project *domain.Project
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			project: &domain.Project{
				Title:     "Park Cleanup",
				EventType: domain.EventOneTime,
				Schedule: domain.Schedule{
					OneTime: &domain.OneTimeSchedule{
						Date:         "2026-06-10",
						ScheduleSlot: domain.ScheduleSlot{StartTime: "09:00", EndTime: "12:00", Volunteers: 5},
					},
				},
				Status:    domain.StatusUpcoming,
				CreatorID: "user-1",
				CreatedAt: created,
				UpdatedAt: created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO projects`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("proj-uuid-1"))
			},
			wantID:  "proj-uuid-1",
			wantErr: false,
		},
		{
			name: "db error",
			project: &domain.Project{
				Title:     "Park Cleanup",
				EventType: domain.EventOneTime,
				Schedule: domain.Schedule{
					OneTime: &domain.OneTimeSchedule{
						Date:         "2026-06-10",
						ScheduleSlot: domain.ScheduleSlot{StartTime: "09:00", EndTime: "12:00", Volunteers: 5},
					},
				},
				CreatorID: "user-1",
				CreatedAt: created,
				UpdatedAt: created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO projects`).
					WillReturnError(sql.ErrConnDone)
			},
			wantID:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewProjectRepository(db)
			err = repo.Create(ctx, tt.project)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.project.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProjectRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success decodes schedule and nullable columns", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, title, description, location, event_type, schedule`).
			WithArgs("proj-1").
			WillReturnRows(sqlmock.NewRows(projectColumnNames).
				AddRow("proj-1", "Park Cleanup", "Bring gloves", "Riverside", "oneTime", []byte(oneTimeScheduleJSON),
					"upcoming", false, nil, "user-1", nil, nil, created, created))

		repo := NewProjectRepository(db)
		got, err := repo.GetByID(ctx, "proj-1")
		require.NoError(t, err)
		require.Equal(t, "proj-1", got.ID)
		require.Equal(t, domain.EventOneTime, got.EventType)
		require.NotNil(t, got.Schedule.OneTime)
		require.Equal(t, "2026-06-10", got.Schedule.OneTime.Date)
		require.Equal(t, 5, got.Schedule.OneTime.Volunteers)
		require.Nil(t, got.OrganizationID)
		require.Nil(t, got.CancelledAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancelled project carries timestamp and reason", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		cancelledAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT id, title, description, location, event_type, schedule`).
			WithArgs("proj-1").
			WillReturnRows(sqlmock.NewRows(projectColumnNames).
				AddRow("proj-1", "Park Cleanup", "", "", "oneTime", []byte(oneTimeScheduleJSON),
					"cancelled", true, "org-1", "user-1", cancelledAt, "rain", created, created))

		repo := NewProjectRepository(db)
		got, err := repo.GetByID(ctx, "proj-1")
		require.NoError(t, err)
		require.Equal(t, domain.StatusCancelled, got.Status)
		require.NotNil(t, got.OrganizationID)
		require.Equal(t, "org-1", *got.OrganizationID)
		require.NotNil(t, got.CancelledAt)
		require.True(t, got.CancelledAt.Equal(cancelledAt))
		require.NotNil(t, got.CancellationReason)
		require.Equal(t, "rain", *got.CancellationReason)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, title, description, location, event_type, schedule`).
			WithArgs("proj-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewProjectRepository(db)
		got, err := repo.GetByID(ctx, "proj-missing")
		require.True(t, errors.Is(err, domain.ErrNotFound))
		require.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt schedule payload", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, title, description, location, event_type, schedule`).
			WithArgs("proj-1").
			WillReturnRows(sqlmock.NewRows(projectColumnNames).
				AddRow("proj-1", "Park Cleanup", "", "", "oneTime", []byte(`not-json`),
					"upcoming", false, nil, "user-1", nil, nil, created, created))

		repo := NewProjectRepository(db)
		_, err = repo.GetByID(ctx, "proj-1")
		require.Error(t, err)
	})
}

func TestProjectRepository_List(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no filter returns all rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, title, description, location, event_type, schedule`).
			WillReturnRows(sqlmock.NewRows(projectColumnNames).
				AddRow("proj-1", "A", "", "", "oneTime", []byte(oneTimeScheduleJSON), "upcoming", false, nil, "user-1", nil, nil, created, created).
				AddRow("proj-2", "B", "", "", "oneTime", []byte(oneTimeScheduleJSON), "upcoming", false, nil, "user-2", nil, nil, created, created))

		repo := NewProjectRepository(db)
		got, err := repo.List(ctx, domain.ProjectFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("organization filter narrows the query", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		orgID := "org-1"
		mock.ExpectQuery(`WHERE organization_id = \$1`).
			WithArgs(orgID).
			WillReturnRows(sqlmock.NewRows(projectColumnNames))

		repo := NewProjectRepository(db)
		got, err := repo.List(ctx, domain.ProjectFilter{OrganizationID: &orgID})
		require.NoError(t, err)
		require.Len(t, got, 0)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_UpdateDetails(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("updates provided fields only", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		title := "Renamed"
		mock.ExpectQuery(`UPDATE projects SET updated_at = NOW\(\), title = \$1`).
			WithArgs(title, "proj-1").
			WillReturnRows(sqlmock.NewRows(projectColumnNames).
				AddRow("proj-1", title, "", "", "oneTime", []byte(oneTimeScheduleJSON), "upcoming", false, nil, "user-1", nil, nil, created, created))

		repo := NewProjectRepository(db)
		got, err := repo.UpdateDetails(ctx, "proj-1", &title, nil, nil)
		require.NoError(t, err)
		require.Equal(t, "Renamed", got.Title)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no fields falls back to fetch", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, title, description, location, event_type, schedule`).
			WithArgs("proj-1").
			WillReturnRows(sqlmock.NewRows(projectColumnNames).
				AddRow("proj-1", "A", "", "", "oneTime", []byte(oneTimeScheduleJSON), "upcoming", false, nil, "user-1", nil, nil, created, created))

		repo := NewProjectRepository(db)
		got, err := repo.UpdateDetails(ctx, "proj-1", nil, nil, nil)
		require.NoError(t, err)
		require.Equal(t, "proj-1", got.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		title := "Renamed"
		mock.ExpectQuery(`UPDATE projects SET`).
			WillReturnError(sql.ErrNoRows)

		repo := NewProjectRepository(db)
		_, err = repo.UpdateDetails(ctx, "proj-missing", &title, nil, nil)
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestProjectRepository_MarkCancelled(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE projects`).
			WithArgs(domain.StatusCancelled, at, "rain", "proj-1").
			WillReturnRows(sqlmock.NewRows(projectColumnNames).
				AddRow("proj-1", "A", "", "", "oneTime", []byte(oneTimeScheduleJSON), "cancelled", false, nil, "user-1", at, "rain", created, created))

		repo := NewProjectRepository(db)
		got, err := repo.MarkCancelled(ctx, "proj-1", at, "rain")
		require.NoError(t, err)
		require.Equal(t, domain.StatusCancelled, got.Status)
		require.NotNil(t, got.CancelledAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE projects`).
			WillReturnError(sql.ErrNoRows)

		repo := NewProjectRepository(db)
		_, err = repo.MarkCancelled(ctx, "proj-missing", at, "rain")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestProjectRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM projects WHERE id = \$1`).
			WithArgs("proj-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewProjectRepository(db)
		require.NoError(t, repo.Delete(ctx, "proj-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM projects WHERE id = \$1`).
			WithArgs("proj-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewProjectRepository(db)
		err = repo.Delete(ctx, "proj-missing")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})
}
