package service

import (
	"context"
	"strings"

	"ecoviewer/internal/models"
	"ecoviewer/internal/repository"
)

type SampleService struct {
	sampleRepo repository.SampleRepo
}

func NewSampleService(sampleRepo repository.SampleRepo) *SampleService {
	return &SampleService{sampleRepo: sampleRepo}
}

// Recent returns the newest samples of a channel recorded by ownerID's dashboards. Samples
// other users recorded for the same channel are never returned. Times are UTC.
func (s *SampleService) Recent(ctx context.Context, ownerID int, channelID string, limit int) ([]models.SampleRecord, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil, &ValidationError{Field: "channel_id", Message: MsgChannelIDRequired}
	}
	recs, err := s.sampleRepo.Recent(ctx, ownerID, channelID, limit)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].RecordedAt = normalizeToUTC(recs[i].RecordedAt)
	}
	return recs, nil
}
