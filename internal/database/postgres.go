package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salesdash/server/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
	DefaultPingTimeout     = 5 * time.Second
)

// JSON and date columns are read back as text so the decoding seam sees
// the same shapes sqlite hands it.
const propertyColumns = `id, url, category, category_type, category_name_ja, genre_name_ja,
	title, price, favorites, company_name,
	images::text AS images, property_data::text AS property_data, is_active,
	first_seen_date::text AS first_seen_date, last_seen_date::text AS last_seen_date,
	created_at, updated_at`

// PostgresStore reads the hosted property table.
type PostgresStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewPostgresStore connects to dsn and verifies the connection.
func NewPostgresStore(dsn string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	return NewPostgresStoreFromDB(db, logger), nil
}

// NewPostgresStoreFromDB wraps an existing connection.
func NewPostgresStoreFromDB(db *sqlx.DB, logger *logrus.Logger) *PostgresStore {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &PostgresStore{db: db, logger: logger}
}

func (s *PostgresStore) ListProperties(ctx context.Context, q PropertyQuery) ([]models.Property, error) {
	var (
		where []string
		args  []any
	)
	if q.Active != nil {
		args = append(args, *q.Active)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if q.Category != "" {
		args = append(args, string(q.Category))
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(propertyColumns)
	b.WriteString(" FROM properties")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(q.Order.clause())
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	var rows []propertyRow
	if err := s.db.SelectContext(ctx, &rows, b.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return decodeRows(rows), nil
}

func (s *PostgresStore) GetPropertyByURL(ctx context.Context, url string) (*models.Property, error) {
	query := "SELECT " + propertyColumns + " FROM properties WHERE url = $1 LIMIT 1"

	var row propertyRow
	err := s.db.GetContext(ctx, &row, query, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	p := decodeProperty(row)
	return &p, nil
}

// UpsertProperties is not supported: the hosted table is written by the
// scraper pipeline only.
func (s *PostgresStore) UpsertProperties(ctx context.Context, properties []models.Property) error {
	return errors.New("upsert is not supported on the hosted store")
}

func (s *PostgresStore) SaveCopyHistory(ctx context.Context, records []models.CopyHistory) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.WithError(rbErr).Error("Failed to rollback copy history transaction")
			}
		}
	}()

	const query = `INSERT INTO ai_copy_history (id, property_url, copy_text, model, is_active, created_at)
		VALUES (:id, :property_url, :copy_text, :model, :is_active, :created_at)`
	for _, r := range records {
		row := newCopyHistoryRow(r)
		if _, err = tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("failed to save copy history: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit copy history: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCopyHistory(ctx context.Context, propertyURL string) ([]models.CopyHistory, error) {
	const query = `SELECT id, property_url, copy_text, model, is_active, created_at
		FROM ai_copy_history WHERE property_url = $1 ORDER BY created_at DESC`

	var rows []copyHistoryRow
	if err := s.db.SelectContext(ctx, &rows, query, propertyURL); err != nil {
		return nil, fmt.Errorf("failed to list copy history: %w", err)
	}

	return decodeHistory(rows), nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
