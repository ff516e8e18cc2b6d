package database

import (
	"context"
	"errors"
	"fmt"

	"salesdash/server/config"
	"salesdash/server/internal/models"

	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("not found")

// Order selects the sort applied to a property listing.
type Order int

const (
	// OrderIDAsc is the only order safe for offset pagination over a changing table
	OrderIDAsc Order = iota
	OrderIDDesc
	OrderCreatedDesc
)

func (o Order) clause() string {
	switch o {
	case OrderIDDesc:
		return "id DESC"
	case OrderCreatedDesc:
		return "created_at DESC, id DESC"
	default:
		return "id ASC"
	}
}

// PropertyQuery filters a listing. Zero values mean "no filter".
type PropertyQuery struct {
	Active   *bool
	Category models.Category
	Order    Order
	Offset   int
	Limit    int
}

// PropertyReader is the read side of the property table.
type PropertyReader interface {
	ListProperties(ctx context.Context, q PropertyQuery) ([]models.Property, error)
	GetPropertyByURL(ctx context.Context, url string) (*models.Property, error)
}

// HistoryStore persists generated sales copy.
type HistoryStore interface {
	SaveCopyHistory(ctx context.Context, records []models.CopyHistory) error
	ListCopyHistory(ctx context.Context, propertyURL string) ([]models.CopyHistory, error)
}

type Store interface {
	PropertyReader
	HistoryStore
	UpsertProperties(ctx context.Context, properties []models.Property) error
	Close() error
}

// Bool returns a pointer for PropertyQuery.Active.
func Bool(v bool) *bool {
	return &v
}

// NewDatabase opens the store selected by DATABASE_TYPE.
func NewDatabase(cfg *config.Config, logger *logrus.Logger) (Store, error) {
	switch cfg.Database.Type {
	case config.DatabaseSQLite:
		return NewSQLiteStore(cfg.Database.SQLitePath, logger)
	case config.DatabasePostgres, config.DatabaseSupabase:
		return NewPostgresStore(cfg.Database.PostgresDSN, logger)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Database.Type)
	}
}
