package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestEventExists(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewWebhookRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "ginee_webhook_events"`)).
		WithArgs("evt-123").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.EventExists("evt-123")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestEventExistsFalseForNewDelivery(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewWebhookRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "ginee_webhook_events"`)).
		WithArgs("evt-new").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.EventExists("evt-new")
	assert.NoError(t, err)
	assert.False(t, exists)
}
