package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jengzang/maritime-metrics-go/internal/apperr"
	"github.com/jengzang/maritime-metrics-go/internal/models"
	"github.com/jengzang/maritime-metrics-go/internal/repository"
	"github.com/jengzang/maritime-metrics-go/internal/spatial"
	"github.com/jengzang/maritime-metrics-go/internal/stats"
	"github.com/jengzang/maritime-metrics-go/pkg/logger"
	"github.com/jengzang/maritime-metrics-go/pkg/metrics"
)

// StatsService answers analytical queries over the stored waypoints.
// It holds no state besides the store and never caches.
type StatsService struct {
	store       repository.WaypointStore
	groupWindow time.Duration
	metrics     *metrics.Metrics
	log         logger.Logger
}

// NewStatsService creates a new stats service. groupWindow is the largest gap
// between two waypoints of the same consecutive group.
func NewStatsService(store repository.WaypointStore, groupWindow time.Duration, m *metrics.Metrics, log logger.Logger) *StatsService {
	return &StatsService{
		store:       store,
		groupWindow: groupWindow,
		metrics:     m,
		log:         log,
	}
}

// ProblemFrequencies counts missing, below-zero, outlier, invalid and total waypoints.
// Entries are ordered by descending count, ties by ascending name.
func (s *StatsService) ProblemFrequencies(ctx context.Context, vesselCode string) (result []models.ProblemFrequency, err error) {
	defer func() { s.observe("frequencies", err) }()

	total, err := requireVessel(ctx, s.store, vesselCode)
	if err != nil {
		return nil, err
	}

	counted := []struct {
		name string
		flag models.Flag
	}{
		{models.FrequencyMissing, models.FlagMissing},
		{models.FrequencyBelowZero, models.FlagBelowZero},
		{models.FrequencyOutlier, models.FlagOutlier},
		{models.FrequencyInvalid, models.FlagInvalid},
	}

	result = make([]models.ProblemFrequency, 0, len(counted)+1)
	for _, c := range counted {
		n, err := s.store.CountByVesselWhere(ctx, vesselCode, c.flag)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s waypoints: %w", c.flag, err)
		}
		result = append(result, models.ProblemFrequency{Problem: c.name, Count: n})
	}
	result = append(result, models.ProblemFrequency{Problem: models.FrequencyTotal, Count: total})

	SortFrequencies(result)
	return result, nil
}

// SortFrequencies orders entries by descending count, ties by ascending name
func SortFrequencies(entries []models.ProblemFrequency) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Problem < entries[j].Problem
	})
}

// MedianSpeedDifference returns the median of |actual - proposed| over every
// waypoint of the vessel that has both speeds, valid or not
func (s *StatsService) MedianSpeedDifference(ctx context.Context, vesselCode string) (median float64, err error) {
	defer func() { s.observe("median", err) }()
	return s.medianSpeedDifference(ctx, vesselCode)
}

func (s *StatsService) medianSpeedDifference(ctx context.Context, vesselCode string) (float64, error) {
	deviations, err := s.speedDeviations(ctx, vesselCode)
	if err != nil {
		return 0, err
	}
	return stats.Median(deviations), nil
}

// CompareCompliance returns the vessel code with the strictly smaller median speed
// difference, or models.ComplianceTie when both medians are equal
func (s *StatsService) CompareCompliance(ctx context.Context, vesselCode1, vesselCode2 string) (result string, err error) {
	defer func() { s.observe("compare", err) }()

	m1, err := s.medianSpeedDifference(ctx, vesselCode1)
	if err != nil {
		return "", err
	}
	m2, err := s.medianSpeedDifference(ctx, vesselCode2)
	if err != nil {
		return "", err
	}

	switch {
	case m1 < m2:
		return vesselCode1, nil
	case m1 > m2:
		return vesselCode2, nil
	default:
		return models.ComplianceTie, nil
	}
}

// SpeedDeviationSummary returns the five-number summary of |actual - proposed| for a vessel
func (s *StatsService) SpeedDeviationSummary(ctx context.Context, vesselCode string) (summary *models.SpeedDeviationSummary, err error) {
	defer func() { s.observe("speed_summary", err) }()

	deviations, err := s.speedDeviations(ctx, vesselCode)
	if err != nil {
		return nil, err
	}

	min, q1, median, q3, max := stats.FiveNumberSummary(deviations)
	return &models.SpeedDeviationSummary{
		Count:  len(deviations),
		Min:    min,
		Q1:     q1,
		Median: median,
		Q3:     q3,
		Max:    max,
	}, nil
}

func (s *StatsService) speedDeviations(ctx context.Context, vesselCode string) ([]float64, error) {
	if _, err := requireVessel(ctx, s.store, vesselCode); err != nil {
		return nil, err
	}

	waypoints, err := s.store.FindByVessel(ctx, vesselCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get waypoints: %w", err)
	}
	return SpeedDeviations(waypoints), nil
}

// SpeedDeviations collects |actual - proposed| of the waypoints that have both speeds
func SpeedDeviations(waypoints []models.Waypoint) []float64 {
	deviations := make([]float64, 0, len(waypoints))
	for _, w := range waypoints {
		if d, ok := w.AbsSpeedDeviation(); ok {
			deviations = append(deviations, d)
		}
	}
	return deviations
}

// SpeedOutliers returns invalid waypoints with |actual - proposed| / proposed > threshold.
// An empty result is a NotFound failure.
func (s *StatsService) SpeedOutliers(ctx context.Context, vesselCode string, threshold float64) (result []models.Waypoint, err error) {
	defer func() { s.observe("speed_outliers", err) }()

	if err := s.checkOutlierQuery(ctx, vesselCode, threshold); err != nil {
		return nil, err
	}

	result, err = s.store.FindSpeedOutliers(ctx, vesselCode, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to get speed outliers: %w", err)
	}
	if len(result) == 0 {
		return nil, apperr.NotFound("no speed outliers found for vessel %s with threshold %g", vesselCode, threshold)
	}
	return result, nil
}

// FuelOutliers returns invalid waypoints with |fuel - predicted| / predicted > threshold.
// An empty result is a NotFound failure.
func (s *StatsService) FuelOutliers(ctx context.Context, vesselCode string, threshold float64) (result []models.Waypoint, err error) {
	defer func() { s.observe("fuel_outliers", err) }()

	if err := s.checkOutlierQuery(ctx, vesselCode, threshold); err != nil {
		return nil, err
	}

	result, err = s.store.FindFuelOutliers(ctx, vesselCode, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to get fuel outliers: %w", err)
	}
	if len(result) == 0 {
		return nil, apperr.NotFound("no fuel outliers found for vessel %s with threshold %g", vesselCode, threshold)
	}
	return result, nil
}

func (s *StatsService) checkOutlierQuery(ctx context.Context, vesselCode string, threshold float64) error {
	if _, err := requireVessel(ctx, s.store, vesselCode); err != nil {
		return err
	}
	if threshold < 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return apperr.InvalidArgument("threshold must be a non-negative number, got %g", threshold)
	}
	return nil
}

// ConsecutiveProblemGroups partitions the vessel's waypoints carrying the problem
// into maximal runs of consecutive timestamps, largest group first
func (s *StatsService) ConsecutiveProblemGroups(ctx context.Context, vesselCode, problemType string) (groups []models.ProblemGroup, err error) {
	defer func() { s.observe("groups", err) }()

	if _, err := requireVessel(ctx, s.store, vesselCode); err != nil {
		return nil, err
	}

	flag, err := models.ParseProblemType(problemType)
	if err != nil {
		return nil, apperr.InvalidArgument("%v", err)
	}

	waypoints, err := s.store.FindByVesselWhere(ctx, vesselCode, flag, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s waypoints: %w", flag, err)
	}

	runs := GroupConsecutive(waypoints, s.groupWindow)
	groups = make([]models.ProblemGroup, len(runs))
	for i, run := range runs {
		groups[i] = newProblemGroup(run)
	}

	s.log.Debug("Grouped problem waypoints",
		"vessel_code", vesselCode,
		"problem", flag,
		"waypoints", len(waypoints),
		"groups", len(groups),
	)
	return groups, nil
}

// GroupConsecutive splits waypoints, in their given order, into maximal runs where each
// adjacent pair has non-decreasing timestamps at most window apart. A missing
// timestamp on either side breaks the run. Runs are sorted by descending size, stable.
func GroupConsecutive(waypoints []models.Waypoint, window time.Duration) [][]models.Waypoint {
	var (
		groups  [][]models.Waypoint
		current []models.Waypoint
	)
	for i, w := range waypoints {
		if i == 0 || consecutive(waypoints[i-1], w, window) {
			current = append(current, w)
			continue
		}
		groups = append(groups, current)
		current = []models.Waypoint{w}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i]) > len(groups[j])
	})
	return groups
}

func consecutive(prev, cur models.Waypoint, window time.Duration) bool {
	if prev.Datetime == nil || cur.Datetime == nil {
		return false
	}
	gap := cur.Datetime.Sub(*prev.Datetime)
	return gap >= 0 && gap <= window
}

func newProblemGroup(run []models.Waypoint) models.ProblemGroup {
	var path []spatial.Point
	for _, w := range run {
		if w.Latitude == nil || w.Longitude == nil {
			continue
		}
		p := spatial.Point{Lat: *w.Latitude, Lon: *w.Longitude}
		if p.InRange() {
			path = append(path, p)
		}
	}

	return models.ProblemGroup{
		Size:       len(run),
		Start:      run[0].Datetime,
		End:        run[len(run)-1].Datetime,
		PathMeters: spatial.PathLength(path),
		Waypoints:  run,
	}
}

func (s *StatsService) observe(query string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrNotFound):
		result = "not_found"
	case errors.Is(err, apperr.ErrInvalidArgument):
		result = "invalid_argument"
	default:
		result = "error"
		s.log.Error("Statistics query failed", "query", query, "error", err)
	}
	s.metrics.QueriesTotal.WithLabelValues(query, result).Inc()
}

// requireVessel fails with NotFound when the vessel has no waypoints. It returns the waypoint count.
func requireVessel(ctx context.Context, store repository.WaypointStore, vesselCode string) (int64, error) {
	n, err := store.CountByVessel(ctx, vesselCode)
	if err != nil {
		return 0, fmt.Errorf("failed to check vessel %s: %w", vesselCode, err)
	}
	if n == 0 {
		return 0, apperr.NotFound("no data found for vessel %s", vesselCode)
	}
	return n, nil
}
