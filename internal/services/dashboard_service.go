package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/abhishekjoshi1998/EduPayout/internal/cache"
	"github.com/abhishekjoshi1998/EduPayout/internal/metrics"
	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
)

const (
	dashboardRecentLimit = 5
	adminDashboardKey    = "dashboard:admin"
)

func mentorDashboardKey(mentorID int64) string {
	return fmt.Sprintf("dashboard:mentor:%d", mentorID)
}

// DashboardInvalidator drops cached dashboards after a write. With no mentor ids only
// the admin dashboard is dropped.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, mentorIDs ...int64)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context, ...int64) {}

func invalidatorOrNop(invalidator DashboardInvalidator) DashboardInvalidator {
	if invalidator == nil {
		return nopInvalidator{}
	}
	return invalidator
}

type DashboardService struct {
	mentorRepo  *repository.MentorRepository
	sessionRepo *repository.SessionRepository
	payoutRepo  *repository.PayoutRepository
	cache       cache.Cache
	ttl         time.Duration
}

func NewDashboardService(
	mentorRepo *repository.MentorRepository,
	sessionRepo *repository.SessionRepository,
	payoutRepo *repository.PayoutRepository,
	dashboardCache cache.Cache,
	ttl time.Duration,
) *DashboardService {
	if dashboardCache == nil {
		dashboardCache = cache.Nop{}
	}
	return &DashboardService{
		mentorRepo:  mentorRepo,
		sessionRepo: sessionRepo,
		payoutRepo:  payoutRepo,
		cache:       dashboardCache,
		ttl:         ttl,
	}
}

func (s *DashboardService) AdminDashboard(ctx context.Context) (*models.AdminDashboard, error) {
	var dashboard models.AdminDashboard
	if s.lookup(ctx, adminDashboardKey, &dashboard) {
		return &dashboard, nil
	}

	activeMentors, err := s.mentorRepo.CountByStatus(ctx, models.MentorStatusActive)
	if err != nil {
		return nil, err
	}
	sessionCounts, err := s.sessionRepo.Counts(ctx, 0)
	if err != nil {
		return nil, err
	}
	totals, err := s.payoutRepo.Totals(ctx, 0)
	if err != nil {
		return nil, err
	}
	recentPayouts, err := s.payoutRepo.ListRecent(ctx, 0, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.sessionRepo.ListUpcoming(ctx, 0, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}

	dashboard = models.AdminDashboard{
		ActiveMentors:    activeMentors,
		TotalSessions:    sessionCounts.Total,
		TotalPayouts:     totals.PaidAmount,
		PendingReviews:   totals.PendingCount,
		RecentPayouts:    recentPayouts,
		UpcomingSessions: upcoming,
	}
	s.store(ctx, adminDashboardKey, dashboard)
	return &dashboard, nil
}

func (s *DashboardService) MentorDashboard(ctx context.Context, actor Actor) (*models.MentorDashboard, error) {
	mentorID, err := mentorIDForActor(ctx, s.mentorRepo, actor)
	if err != nil {
		return nil, err
	}

	key := mentorDashboardKey(mentorID)
	var dashboard models.MentorDashboard
	if s.lookup(ctx, key, &dashboard) {
		return &dashboard, nil
	}

	sessionCounts, err := s.sessionRepo.Counts(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	totals, err := s.payoutRepo.Totals(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	recentSessions, _, err := s.sessionRepo.List(ctx, repository.SessionListFilter{
		MentorID: mentorID,
		Limit:    dashboardRecentLimit,
	})
	if err != nil {
		return nil, err
	}
	recentPayouts, err := s.payoutRepo.ListRecent(ctx, mentorID, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}

	dashboard = models.MentorDashboard{
		TotalSessions:        sessionCounts.Total,
		CompletedSessions:    sessionCounts.Completed,
		UpcomingSessions:     sessionCounts.Upcoming,
		CurrentMonthEarnings: totals.CurrentMonthAmount,
		PendingPayouts:       totals.PendingAmount,
		LifetimeEarnings:     totals.PaidAmount,
		RecentSessions:       recentSessions,
		RecentPayouts:        recentPayouts,
	}
	s.store(ctx, key, dashboard)
	return &dashboard, nil
}

func (s *DashboardService) Invalidate(ctx context.Context, mentorIDs ...int64) {
	keys := []string{adminDashboardKey}
	for _, mentorID := range mentorIDs {
		keys = append(keys, mentorDashboardKey(mentorID))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Printf("dashboard cache invalidate: %v", err)
	}
}

// Cache failures are logged and treated as misses.
func (s *DashboardService) lookup(ctx context.Context, key string, dest any) bool {
	if s.ttl <= 0 {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		log.Printf("dashboard cache get %s: %v", key, err)
		metrics.DashboardCacheLookups.WithLabelValues("error").Inc()
		return false
	}
	if hit {
		metrics.DashboardCacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.DashboardCacheLookups.WithLabelValues("miss").Inc()
	}
	return hit
}

func (s *DashboardService) store(ctx context.Context, key string, value any) {
	if s.ttl <= 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		log.Printf("dashboard cache set %s: %v", key, err)
	}
}
