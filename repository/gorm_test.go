package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	return NewGormStore(gdb), mock
}

func TestDecrementStockIsConditional(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	update := regexp.QuoteMeta(`UPDATE "medicines" SET "stock_quantity"=stock_quantity - $1 WHERE (id = $2 AND stock_quantity >= $3)`)

	mock.ExpectBegin()
	mock.ExpectExec(update).
		WithArgs(5, 7, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := store.Repos().Medicines.DecrementStock(ctx, 7, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectBegin()
	mock.ExpectExec(update).
		WithArgs(50, 7, 50).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err = store.Repos().Medicines.DecrementStock(ctx, 7, 50)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkDispensedSkipsDispensedRecord(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	update := `UPDATE "medical_records" SET .* WHERE \(id = \$\d AND status <> \$\d\)`

	mock.ExpectBegin()
	mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := store.Repos().Records.MarkDispensed(ctx, 3, at)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectBegin()
	mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err = store.Repos().Records.MarkDispensed(ctx, 3, at)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateBySupplier(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "medicines" SET "is_active"=$1 WHERE (supplier_id = $2 AND is_active = $3)`)).
		WithArgs(false, 2, true).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := store.Repos().Medicines.DeactivateBySupplier(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasActiveAtIgnoresCancelled(t *testing.T) {
	store, mock := newMockStore(t)
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "appointments" WHERE (doctor_id = $1 AND appointment_time = $2 AND status <> $3) AND id <> $4`)).
		WithArgs(4, at, "cancelled", 11).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	busy, err := store.Repos().Appointments.HasActiveAt(context.Background(), 4, at, 11)
	require.NoError(t, err)
	assert.True(t, busy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDTranslatesNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "medicines" WHERE "medicines"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Repos().Medicines.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "medicines" SET "stock_quantity"=stock_quantity - $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(r *Repositories) error {
		if _, err := r.Medicines.DecrementStock(context.Background(), 1, 2); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrDuplicate)

	other := errors.New("conn refused")
	assert.Equal(t, other, translate(other))
}
