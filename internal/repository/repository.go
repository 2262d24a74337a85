package repository

import (
	"context"
	"database/sql"
	"time"

	"ecoviewer/internal/models"
)

// Authorization stores the users that own dashboards.
type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// EventQuery selects connection events of one owner. Zero fields do not filter.
type EventQuery struct {
	OwnerID   int
	From      time.Time
	To        time.Time
	Type      string
	ChannelID string
}

// EventRepo is the append-only connection log.
type EventRepo interface {
	Append(ctx context.Context, e models.ConnectionEvent) error
	List(ctx context.Context, q EventQuery) ([]models.ConnectionEvent, error)
}

// SampleRepo stores every applied dashboard sample.
type SampleRepo interface {
	Append(ctx context.Context, r models.SampleRecord) error
	Recent(ctx context.Context, ownerID int, channelID string, limit int) ([]models.SampleRecord, error)
}

type Repository struct {
	EventRepo  EventRepo
	SampleRepo SampleRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo:  NewEventSQLite(db),
		SampleRepo: NewSampleSQLite(db),
		Auth:       NewUserSQLite(db),
	}
}
