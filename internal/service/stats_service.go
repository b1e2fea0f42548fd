package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"alshuail-fund/internal/compliance"
	"alshuail-fund/internal/store"
)

const dashboardStatsKey = "stats:dashboard"

// DashboardStats is the cached dashboard block: the aggregate compliance
// statistics plus the member count per tribal section.
type DashboardStats struct {
	Statistics         Statistics     `json:"statistics"`
	TribalDistribution map[string]int `json:"tribalDistribution"`
	GeneratedAt        time.Time      `json:"generatedAt"`
}

// StatsService serves dashboard statistics through a short-lived cache.
// A cache failure degrades to a live computation, never to an error.
type StatsService struct {
	query  *MemberQueryService
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewStatsService(query *MemberQueryService, kv store.KV, ttl time.Duration, logger *zap.Logger) *StatsService {
	return &StatsService{query: query, kv: kv, ttl: ttl, logger: logger, now: time.Now}
}

// Dashboard returns the cached statistics, recomputing on miss or when
// refresh is set.
func (s *StatsService) Dashboard(ctx context.Context, refresh bool) (*DashboardStats, error) {
	if !refresh && s.kv != nil {
		if cached, err := s.kv.Get(ctx, dashboardStatsKey); err == nil {
			var stats DashboardStats
			unmarshalErr := json.Unmarshal([]byte(cached), &stats)
			if unmarshalErr == nil {
				return &stats, nil
			}
			s.logger.Warn("discarding corrupt cached stats", zap.Error(unmarshalErr))
		} else if err != store.ErrMiss {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.kv != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.kv.Set(ctx, dashboardStatsKey, string(payload), s.ttl); err != nil {
				s.logger.Warn("stats cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// Invalidate drops the cached block, for callers that just mutated balances.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Del(ctx, dashboardStatsKey); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

// SectionCount is one tribal section's share of the membership.
type SectionCount struct {
	Section    string  `json:"section"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TribalDistribution returns the member count and share per section, largest
// first, always live.
func (s *StatsService) TribalDistribution(ctx context.Context) ([]SectionCount, error) {
	members, _, err := s.query.FilteredMembers(ctx, MemberQuery{})
	if err != nil {
		return nil, err
	}
	dist := distribution(members)

	counts := make([]SectionCount, 0, len(compliance.TribalSections))
	for _, section := range compliance.TribalSections {
		sc := SectionCount{Section: section, Count: dist[section]}
		if len(members) > 0 {
			sc.Percentage = math.Round(float64(sc.Count)/float64(len(members))*1000) / 10
		}
		counts = append(counts, sc)
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts, nil
}

func (s *StatsService) compute(ctx context.Context) (*DashboardStats, error) {
	members, stats, err := s.query.FilteredMembers(ctx, MemberQuery{})
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		Statistics:         stats,
		TribalDistribution: distribution(members),
		GeneratedAt:        s.now(),
	}, nil
}

func distribution(members []EnrichedMember) map[string]int {
	dist := make(map[string]int, len(compliance.TribalSections))
	for _, section := range compliance.TribalSections {
		dist[section] = 0
	}
	for _, m := range members {
		dist[m.TribalSection]++
	}
	return dist
}
