package service

import (
	"context"

	"ecoviewer/internal/models"
)

// SampleRecorder receives every sample a dashboard applies.
type SampleRecorder interface {
	Append(ctx context.Context, r models.SampleRecord) error
}

// ViewPublisher receives the rendered view after every applied sample.
type ViewPublisher interface {
	PublishView(ctx context.Context, v models.DashboardView) error
	ClearView(ctx context.Context, sessionID string) error
}

// EventRecorder appends to the connection log.
type EventRecorder interface {
	Append(ctx context.Context, e models.ConnectionEvent) error
}
