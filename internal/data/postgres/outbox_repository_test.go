package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/qudmeet/exchange-service/internal/domain/notification"
	"github.com/qudmeet/exchange-service/internal/domain/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOutboxMessage(t *testing.T) *outbox.Message {
	t.Helper()
	event := notification.NewEvent(
		"user-1",
		"Payment Received",
		"We have received your payment of 1000 NGN. We are processing your transaction now.",
		notification.TypePaymentReceived,
		"TX12345678",
		"corr-1",
	)
	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)
	return msg
}

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: logger}

	query := `INSERT INTO notification_outbox`

	t.Run("success", func(t *testing.T) {
		msg := sampleOutboxMessage(t)
		mock.ExpectQuery(query).
			WithArgs(msg.EventID, msg.UserID, msg.Payload, msg.Status, msg.Attempts, msg.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

		err := repo.Create(ctx, msg)
		assert.NoError(t, err)
		assert.Equal(t, int64(11), msg.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate event id", func(t *testing.T) {
		msg := sampleOutboxMessage(t)
		mock.ExpectQuery(query).
			WithArgs(msg.EventID, msg.UserID, msg.Payload, msg.Status, msg.Attempts, msg.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		err := repo.Create(ctx, msg)
		assert.Error(t, err)
		var dupErr outbox.ErrDuplicateMessage
		assert.ErrorAs(t, err, &dupErr)
		assert.Equal(t, msg.EventID, dupErr.EventID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		msg := sampleOutboxMessage(t)
		dbErr := errors.New("db error")
		mock.ExpectQuery(query).
			WithArgs(msg.EventID, msg.UserID, msg.Payload, msg.Status, msg.Attempts, msg.CreatedAt).
			WillReturnError(dbErr)

		err := repo.Create(ctx, msg)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create outbox message")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_GetPending(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: logger}

	query := `FROM notification_outbox\s+WHERE status = \$1`

	t.Run("success", func(t *testing.T) {
		msg := sampleOutboxMessage(t)
		msg.ID = 2
		rows := pgxmock.NewRows([]string{"id", "event_id", "user_id", "payload", "status", "attempts", "created_at", "last_attempt_at"}).
			AddRow(msg.ID, msg.EventID, msg.UserID, msg.Payload, msg.Status, msg.Attempts, msg.CreatedAt, msg.LastAttemptAt)
		mock.ExpectQuery(query).WithArgs(outbox.StatusPending, 50).WillReturnRows(rows)

		messages, err := repo.GetPending(ctx, 50)
		assert.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, msg, messages[0])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "event_id", "user_id", "payload", "status", "attempts", "created_at", "last_attempt_at"})
		mock.ExpectQuery(query).WithArgs(outbox.StatusPending, 50).WillReturnRows(rows)

		messages, err := repo.GetPending(ctx, 50)
		assert.NoError(t, err)
		assert.Empty(t, messages)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("query db error")
		mock.ExpectQuery(query).WithArgs(outbox.StatusPending, 50).WillReturnError(dbErr)

		messages, err := repo.GetPending(ctx, 50)
		assert.Error(t, err)
		assert.Nil(t, messages)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: logger}

	query := `UPDATE notification_outbox\s+SET status = \$1`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(outbox.StatusProcessed, pgxmock.AnyArg(), int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateStatus(ctx, 1, outbox.StatusProcessed)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(outbox.StatusProcessed, pgxmock.AnyArg(), int64(42)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, 42, outbox.StatusProcessed)
		assert.Error(t, err)
		var notFoundErr outbox.ErrMessageNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, int64(42), notFoundErr.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_IncrementAttempts(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: logger}

	query := `UPDATE notification_outbox\s+SET attempts = attempts \+ 1`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(pgxmock.AnyArg(), int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.IncrementAttempts(ctx, 1)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(pgxmock.AnyArg(), int64(42)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.IncrementAttempts(ctx, 42)
		assert.ErrorIs(t, err, outbox.ErrMessageNotFound{ID: 42})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_Delete(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: logger}

	query := `DELETE FROM notification_outbox\s+WHERE id = \$1`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("DELETE", 1))

		err := repo.Delete(ctx, 1)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(int64(42)).WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.Delete(ctx, 42)
		assert.ErrorIs(t, err, outbox.ErrMessageNotFound{ID: 42})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_WithTx(t *testing.T) {
	logger := newTestLogger()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	originalRepo := &OutboxRepository{querier: mockPool, logger: logger}

	mockPool.ExpectBegin()
	pgxTx, err := mockPool.Begin(context.Background())
	require.NoError(t, err)

	txRepo := originalRepo.WithTx(pgxTx)

	assert.NotNil(t, txRepo)
	assert.Equal(t, originalRepo.logger, txRepo.(*OutboxRepository).logger)
	assert.Equal(t, pgxTx, txRepo.(*OutboxRepository).querier, "Querier in new repo should be the transaction")

	assert.NoError(t, mockPool.ExpectationsWereMet())
}
