package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"salesdash/server/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var propertyColumnNames = []string{
	"id", "url", "category", "category_type", "category_name_ja", "genre_name_ja",
	"title", "price", "favorites", "company_name", "images", "property_data", "is_active",
	"first_seen_date", "last_seen_date", "created_at", "updated_at",
}

func setupMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresStoreFromDB(sqlx.NewDb(db, "postgres"), nil), mock
}

func TestPostgresStore_ListProperties(t *testing.T) {
	store, mock := setupMockStore(t)
	created := time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(propertyColumnNames).
		AddRow(1, "https://example.com/1", "jukyo", "sale", "賃貸", "住居",
			"那覇の住居", "8.5万円", 2, "沖縄不動産", `["a.jpg"]`, `"{\"所在地\":\"沖縄県那覇市\"}"`, true,
			"2024-03-01", nil, created, created).
		AddRow(2, "https://example.com/2", "unknown", nil, nil, nil,
			nil, nil, nil, nil, nil, nil, true,
			nil, nil, nil, nil)

	mock.ExpectQuery(`SELECT (.+) FROM properties WHERE is_active = \$1 AND category = \$2 ORDER BY id ASC LIMIT \$3 OFFSET \$4`).
		WithArgs(true, "jukyo", 100, 200).
		WillReturnRows(rows)

	got, err := store.ListProperties(context.Background(), PropertyQuery{
		Active:   Bool(true),
		Category: models.CategoryResidentialRental,
		Offset:   200,
		Limit:    100,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, models.CategoryTypeRental, got[0].CategoryType)
	assert.Equal(t, "沖縄県那覇市", got[0].Attribute("所在地"))
	assert.Equal(t, []string{"a.jpg"}, got[0].Images)
	assert.Equal(t, "2024-03-01", got[0].FirstSeenDate.In(models.Tokyo).Format("2006-01-02"))
	assert.True(t, got[0].LastSeenDate.IsZero())

	assert.Equal(t, models.CategoryOther, got[1].Category)
	assert.Equal(t, "その他", got[1].GenreName)
	assert.Empty(t, got[1].Attributes)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProperties_NoFilters(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM properties ORDER BY id DESC$`).
		WillReturnRows(sqlmock.NewRows(propertyColumnNames))

	got, err := store.ListProperties(context.Background(), PropertyQuery{Order: OrderIDDesc})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProperties_Error(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM properties`).WillReturnError(sql.ErrConnDone)

	_, err := store.ListProperties(context.Background(), PropertyQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestPostgresStore_GetPropertyByURL(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM properties WHERE url = \$1 LIMIT 1`).
					WithArgs("https://example.com/1").
					WillReturnRows(sqlmock.NewRows(propertyColumnNames).AddRow(
						1, "https://example.com/1", "house", "sale", "売買", "戸建",
						"戸建", "3,000万円", 0, nil, nil, nil, true,
						nil, nil, nil, nil))
			},
		},
		{
			name: "missing",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM properties WHERE url = \$1`).
					WillReturnRows(sqlmock.NewRows(propertyColumnNames))
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := setupMockStore(t)
			tt.setup(mock)

			p, err := store.GetPropertyByURL(context.Background(), "https://example.com/1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.CategoryHouse, p.Category)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_SaveCopyHistory(t *testing.T) {
	store, mock := setupMockStore(t)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	insert := regexp.QuoteMeta("INSERT INTO ai_copy_history")

	mock.ExpectBegin()
	mock.ExpectExec(insert).
		WithArgs("a", "https://example.com/1", "copy", "gemini-2.5-pro", true, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).
		WithArgs("b", "https://example.com/1", "copy 2", "gemini-2.5-pro", true, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.SaveCopyHistory(context.Background(), []models.CopyHistory{
		{ID: "a", PropertyURL: "https://example.com/1", CopyText: "copy", Model: "gemini-2.5-pro", IsActive: true, CreatedAt: now},
		{ID: "b", PropertyURL: "https://example.com/1", CopyText: "copy 2", Model: "gemini-2.5-pro", IsActive: true, CreatedAt: now},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCopyHistory_RollsBack(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ai_copy_history")).
		WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	err := store.SaveCopyHistory(context.Background(), []models.CopyHistory{
		{ID: "a", PropertyURL: "https://example.com/1", CopyText: "copy", CreatedAt: time.Now()},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCopyHistory(t *testing.T) {
	store, mock := setupMockStore(t)
	newer := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM ai_copy_history WHERE property_url = \$1 ORDER BY created_at DESC`).
		WithArgs("https://example.com/1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "property_url", "copy_text", "model", "is_active", "created_at"}).
			AddRow("b", "https://example.com/1", "new", "gemini-2.5-pro", true, newer).
			AddRow("a", "https://example.com/1", "old", "gemini-2.5-pro", true, older))

	history, err := store.ListCopyHistory(context.Background(), "https://example.com/1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "new", history[0].CopyText)
	assert.NoError(t, mock.ExpectationsWereMet())
}
