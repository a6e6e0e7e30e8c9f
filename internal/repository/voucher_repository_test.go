package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVoucherTabCounts(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewVoucherRepository(gormDB)

	rows := sqlmock.NewRows([]string{"all", "active", "scheduled", "expired", "disabled"}).
		AddRow(10, 4, 2, 3, 1)
	mock.ExpectQuery(`COUNT\(\*\) FILTER`).WillReturnRows(rows)

	counts, err := repo.GetVoucherTabCounts(time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(10), counts.All)
	assert.Equal(t, int64(4), counts.Active)
	assert.Equal(t, int64(2), counts.Scheduled)
	assert.Equal(t, int64(3), counts.Expired)
	assert.Equal(t, int64(1), counts.Disabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}
