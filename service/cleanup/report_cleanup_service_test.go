package cleanup

import (
	"context"
	"testing"
	"time"

	"completion-service/service/models"
	"completion-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupExpiredReports(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for id, age := range map[string]int{"r-old": 120, "r-edge": 31, "r-new": 2} {
		require.NoError(t, tdb.DB.Create(&models.CompletionReport{
			ID:        id,
			Publisher: "log",
			CreatedAt: now.AddDate(0, 0, -age),
		}).Error)
	}

	svc := NewReportCleanupService(tdb.DB, 30)
	svc.now = func() time.Time { return now }

	deleted, err := svc.CleanupExpiredReports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var remaining []models.CompletionReport
	require.NoError(t, tdb.DB.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "r-new", remaining[0].ID)
}

func TestCleanupExpiredReports_Disabled(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	require.NoError(t, tdb.DB.Create(&models.CompletionReport{ID: "r1", CreatedAt: time.Now().AddDate(-1, 0, 0)}).Error)

	deleted, err := NewReportCleanupService(tdb.DB, 0).CleanupExpiredReports(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestStartStop(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewReportCleanupService(tdb.DB, 30)

	assert.Error(t, svc.Start("every day"))
	require.NoError(t, svc.Start(""))
	assert.Error(t, svc.Start(""), "重复启动应返回错误")
	svc.Stop()
	svc.Stop()
}
