package service

import (
	"context"

	"ecoviewer/internal/logger"
	"ecoviewer/internal/models"
	"ecoviewer/internal/repository"
)

// Authorization registers the users that own dashboards and resolves their tokens.
type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Connection validates channel credentials typed into the connection form.
type Connection interface {
	Submit(ctx context.Context, ownerID int, p SubmitParams) (models.Handoff, error)
}

// Dashboards owns the mounted dashboards of every user.
type Dashboards interface {
	Mount(ctx context.Context, ownerID int, h models.Handoff) (SessionInfo, error)
	State(ownerID int, id string) (models.DashboardState, error)
	View(ownerID int, id string) (models.DashboardView, error)
	Sessions(ownerID int) []SessionInfo
	Unmount(ctx context.Context, ownerID int, id string) error
	Shutdown()
}

// EventLog exposes the append-only connection log with filtering.
type EventLog interface {
	List(ctx context.Context, ownerID int, f LogFilter) ([]models.ConnectionEvent, error)
}

// SampleHistory reads the samples recorded by dashboards.
type SampleHistory interface {
	Recent(ctx context.Context, ownerID int, channelID string, limit int) ([]models.SampleRecord, error)
}

type Service struct {
	Connection
	Dashboards
	EventLog
	SampleHistory
	Authorization
}

// Deps carries what the services need beyond the repositories. Views may be nil.
type Deps struct {
	Feeds     FeedFetcher
	Views     ViewPublisher
	Logger    *logger.Logger
	Dashboard DashboardConfig
	Auth      AuthConfig
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	dashDeps := DashboardDeps{
		Feeds:   deps.Feeds,
		Events:  repos.EventRepo,
		Samples: repos.SampleRepo,
		Views:   deps.Views,
		Logger:  deps.Logger,
	}
	return &Service{
		Connection:    NewConnectionService(deps.Feeds, repos.EventRepo, deps.Logger),
		Dashboards:    NewDashboardService(dashDeps, deps.Dashboard),
		EventLog:      NewEventLogService(repos.EventRepo),
		SampleHistory: NewSampleService(repos.SampleRepo),
		Authorization: NewAuthService(repos.Auth, deps.Auth),
	}
}
