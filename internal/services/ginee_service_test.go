package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sneakerflash/internal/repository"
)

func newTestGineeService(secret string) *GineeService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewGineeService(nil, nil, nil, nil, nil, log, secret)
}

func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAcceptsValid(t *testing.T) {
	svc := newTestGineeService("topsecret")
	payload := []byte(`{"eventId":"evt-1"}`)

	err := svc.VerifySignature(payload, signPayload("topsecret", payload))
	assert.NoError(t, err)
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	svc := newTestGineeService("topsecret")
	payload := []byte(`{"eventId":"evt-1"}`)

	err := svc.VerifySignature(payload, signPayload("othersecret", payload))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureRejectsTamperedPayload(t *testing.T) {
	svc := newTestGineeService("topsecret")
	signature := signPayload("topsecret", []byte(`{"eventId":"evt-1"}`))

	err := svc.VerifySignature([]byte(`{"eventId":"evt-2"}`), signature)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureRequiresConfiguredSecret(t *testing.T) {
	svc := newTestGineeService("")

	err := svc.VerifySignature([]byte(`{}`), "anything")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleWebhookAcksReplayWithoutReprocessing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewGineeService(repository.NewWebhookRepository(gormDB), nil, nil, nil, nil, log, "topsecret")

	// The only query allowed is the event ID existence check; a replay
	// must not insert or dispatch anything.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "ginee_webhook_events"`)).
		WithArgs("evt-seen-before").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	payload := []byte(`{"eventId":"evt-seen-before","eventType":"STOCK_UPDATED","data":{"sku":"NIK-1","warehouseStock":5}}`)
	err = svc.HandleWebhook(context.Background(), payload, signPayload("topsecret", payload))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleWebhookRejectsMissingEventID(t *testing.T) {
	svc := newTestGineeService("topsecret")

	payload := []byte(`{"eventType":"STOCK_UPDATED","data":{}}`)
	err := svc.HandleWebhook(context.Background(), payload, signPayload("topsecret", payload))
	assert.Error(t, err)
}
