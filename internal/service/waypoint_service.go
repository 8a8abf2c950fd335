package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jengzang/maritime-metrics-go/internal/apperr"
	"github.com/jengzang/maritime-metrics-go/internal/models"
	"github.com/jengzang/maritime-metrics-go/internal/repository"
)

// PeriodLayout is the layout of the period bounds accepted by Summaries
const PeriodLayout = "2006-01-02T15:04:05"

// WaypointService handles read-only listing of stored waypoints
type WaypointService struct {
	store repository.WaypointStore
}

// NewWaypointService creates a new waypoint service
func NewWaypointService(store repository.WaypointStore) *WaypointService {
	return &WaypointService{store: store}
}

// All retrieves every stored waypoint
func (s *WaypointService) All(ctx context.Context) ([]models.Waypoint, error) {
	waypoints, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get waypoints: %w", err)
	}
	return waypoints, nil
}

// VesselCodes retrieves the distinct vessel codes
func (s *WaypointService) VesselCodes(ctx context.Context) ([]string, error) {
	codes, err := s.store.VesselCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get vessel codes: %w", err)
	}
	return codes, nil
}

// Valid retrieves the valid waypoints of a vessel
func (s *WaypointService) Valid(ctx context.Context, vesselCode string) ([]models.Waypoint, error) {
	return s.byFlag(ctx, vesselCode, models.FlagInvalid, false)
}

// WithFlag retrieves the waypoints of a vessel carrying the flag
func (s *WaypointService) WithFlag(ctx context.Context, vesselCode string, flag models.Flag) ([]models.Waypoint, error) {
	return s.byFlag(ctx, vesselCode, flag, true)
}

func (s *WaypointService) byFlag(ctx context.Context, vesselCode string, flag models.Flag, value bool) ([]models.Waypoint, error) {
	waypoints, err := s.store.FindByVesselWhere(ctx, vesselCode, flag, value)
	if err != nil {
		return nil, fmt.Errorf("failed to get waypoints: %w", err)
	}
	return waypoints, nil
}

// SpeedDifferences retrieves location and speed difference of the valid waypoints of a vessel
func (s *WaypointService) SpeedDifferences(ctx context.Context, vesselCode string) ([]models.SpeedDifference, error) {
	diffs, err := s.store.FindSpeedDifferences(ctx, vesselCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get speed differences: %w", err)
	}
	return diffs, nil
}

// Summaries retrieves the measured values of the valid waypoints recorded in [start, end].
// Bounds use PeriodLayout.
func (s *WaypointService) Summaries(ctx context.Context, vesselCode, start, end string) ([]models.MetricSummary, error) {
	from, err := time.Parse(PeriodLayout, start)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid startDate %q, expected yyyy-MM-ddTHH:mm:ss", start)
	}
	to, err := time.Parse(PeriodLayout, end)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid endDate %q, expected yyyy-MM-ddTHH:mm:ss", end)
	}
	if from.After(to) {
		return nil, apperr.InvalidArgument("startDate %s is after endDate %s", start, end)
	}

	if _, err := requireVessel(ctx, s.store, vesselCode); err != nil {
		return nil, err
	}

	summaries, err := s.store.FindSummariesBetween(ctx, vesselCode, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get metric summaries: %w", err)
	}
	return summaries, nil
}
