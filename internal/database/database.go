package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"salesdash/server/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteStore keeps a local snapshot of the property table.
type SQLiteStore struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// brings its schema up to date.
func NewSQLiteStore(dbPath string, logger *logrus.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	// sqlite serialises writers anyway, and :memory: is per connection
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// NewTestDB returns an empty in-memory store.
func NewTestDB() (*SQLiteStore, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return NewSQLiteStore(":memory:", logger)
}

func (s *SQLiteStore) ListProperties(ctx context.Context, q PropertyQuery) ([]models.Property, error) {
	tx := s.db.WithContext(ctx).Model(&propertyRow{})
	if q.Active != nil {
		tx = tx.Where("is_active = ?", *q.Active)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", string(q.Category))
	}
	tx = tx.Order(q.Order.clause())
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var rows []propertyRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return decodeRows(rows), nil
}

func (s *SQLiteStore) GetPropertyByURL(ctx context.Context, url string) (*models.Property, error) {
	var row propertyRow
	err := s.db.WithContext(ctx).Where("url = ?", url).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	p := decodeProperty(row)
	return &p, nil
}

// UpsertProperties inserts new listings and refreshes existing ones by URL.
// first_seen_date and created_at of an existing row are kept.
func (s *SQLiteStore) UpsertProperties(ctx context.Context, properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]propertyRow, 0, len(properties))
	for _, p := range properties {
		rows = append(rows, encodeProperty(p, now))
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category", "category_type", "category_name_ja", "genre_name_ja",
			"title", "price", "favorites", "company_name", "images",
			"property_data", "is_active", "last_seen_date", "updated_at",
		}),
	}).Omit("id").CreateInBatches(rows, 200).Error
	if err != nil {
		return fmt.Errorf("failed to upsert properties: %w", err)
	}

	s.logger.WithField("count", len(rows)).Debug("Upserted properties")
	return nil
}

func (s *SQLiteStore) SaveCopyHistory(ctx context.Context, records []models.CopyHistory) error {
	if len(records) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range records {
			row := newCopyHistoryRow(r)
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save copy history: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) ListCopyHistory(ctx context.Context, propertyURL string) ([]models.CopyHistory, error) {
	var rows []copyHistoryRow
	err := s.db.WithContext(ctx).
		Where("property_url = ?", propertyURL).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list copy history: %w", err)
	}

	return decodeHistory(rows), nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
