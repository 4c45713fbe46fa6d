package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_AdjustmentSummary(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tenantID := uuid.New()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	mock.ExpectQuery("SELECT kind, COUNT").
		WithArgs(tenantID, start, end).
		WillReturnRows(pgxmock.NewRows([]string{"kind", "count", "total"}).
			AddRow("charge", int64(3), 45.50).
			AddRow("discount", int64(1), -19.80))

	repo := NewRepository(mock)
	summaries, err := repo.AdjustmentSummary(context.Background(), tenantID, start, end)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "charge", summaries[0].Kind)
	assert.Equal(t, int64(3), summaries[0].Count)
	assert.Equal(t, 45.50, summaries[0].Total)
	assert.Equal(t, "discount", summaries[1].Kind)
	assert.Equal(t, -19.80, summaries[1].Total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AdjustmentTimeline(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tenantID := uuid.New()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	day := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT date_trunc").
		WithArgs(tenantID, start, end).
		WillReturnRows(pgxmock.NewRows([]string{"day", "kind", "total"}).
			AddRow(day, "charge", 5.00))

	repo := NewRepository(mock)
	timeline, err := repo.AdjustmentTimeline(context.Background(), tenantID, start, end)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, day, timeline[0].Day)
	assert.Equal(t, "charge", timeline[0].Kind)
	assert.Equal(t, 5.00, timeline[0].Total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RuleActivity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tenantID := uuid.New()
	ruleID := uuid.New()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	last := start.Add(72 * time.Hour)

	mock.ExpectQuery("SELECT rule_id, COUNT").
		WithArgs(tenantID, start, end).
		WillReturnRows(pgxmock.NewRows([]string{"rule_id", "count", "max"}).
			AddRow(ruleID, int64(7), &last))

	repo := NewRepository(mock)
	activity, err := repo.RuleActivity(context.Background(), tenantID, start, end)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, ruleID, activity[0].RuleID)
	assert.Equal(t, int64(7), activity[0].Executions)
	require.NotNil(t, activity[0].LastExecuted)
	assert.Equal(t, last, *activity[0].LastExecuted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteOldExecutions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM rule_executions").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 12))

	repo := NewRepository(mock)
	deleted, err := repo.DeleteOldExecutions(context.Background(), 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)

	assert.NoError(t, mock.ExpectationsWereMet())
}
