package catalog

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{"id", "name", "price", "description", "image_url"}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewPostgresStore(conn), mock
}

func TestPostgresStore_List(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectProducts + ` ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(1, "Laptop Pro", "1200.000", "desc", PlaceholderImage).
			AddRow(2, "Cable", "5.005", "", PlaceholderImage))

	products, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.True(t, products[1].Price.Equal(decimal.RequireFromString("5.005")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectProducts + ` WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), 9)
	assert.ErrorIs(t, err, ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(insertProductQuery)).
		WithArgs("Monitor", "300", "", PlaceholderImage).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	p, err := s.Create(context.Background(), Product{Name: "Monitor", Price: decimal.NewFromInt(300), ImageURL: PlaceholderImage})
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Update(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockProductQuery)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(2, "Mouse", "25", "old", "/uploads/old.png"))
	mock.ExpectExec(regexp.QuoteMeta(updateProductQuery)).
		WithArgs("Mouse", "25", "new", "/uploads/old.png", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	desc := "new"
	before, after, err := s.Update(context.Background(), 2, ProductUpdate{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "old", before.Description)
	assert.Equal(t, "new", after.Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateNotFoundRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockProductQuery)).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := s.Update(context.Background(), 5, ProductUpdate{})
	assert.ErrorIs(t, err, ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(deleteProductQuery)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(3, "Keyboard", "75", "", "/uploads/kb.png"))

	p, err := s.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/kb.png", p.ImageURL)
	require.NoError(t, mock.ExpectationsWereMet())
}
