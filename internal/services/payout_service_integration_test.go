package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/payout"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

type fixedRates payout.Rates

func (r fixedRates) CurrentRates(context.Context) (payout.Rates, error) {
	return payout.Rates(r), nil
}

func TestPayoutServiceCreateAndPayFlow(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationPayoutService(pool)

	mentorID := createTestMentor(t, ctx, pool)
	t.Cleanup(func() { cleanupTestMentors(t, ctx, pool, mentorID) })

	first := createTestSession(t, ctx, pool, mentorID, models.SessionTypeLive, "2030-03-10", 5000)
	second := createTestSession(t, ctx, pool, mentorID, models.SessionTypeLive, "2030-03-12", 5000)

	created, err := service.CreatePayout(ctx, []int64{first, second})
	if err != nil {
		t.Fatalf("CreatePayout: %v", err)
	}

	if created.Status != models.PayoutStatusPending {
		t.Fatalf("expected pending payout, got %q", created.Status)
	}
	if created.BasePayout != 10000 || created.PlatformFee != 1000 || created.FinalAmount != 8500 {
		t.Fatalf("unexpected payout amounts: %+v", created)
	}
	if created.DateRange.From != "2030-03-10" || created.DateRange.To != "2030-03-12" {
		t.Fatalf("unexpected date range: %+v", created.DateRange)
	}
	if len(created.SessionIDs) != 2 {
		t.Fatalf("expected two linked sessions, got %v", created.SessionIDs)
	}

	if _, err := service.UpdatePayoutStatus(ctx, created.ID, PayoutStatusUpdate{Status: models.PayoutStatusProcessing}); err != nil {
		t.Fatalf("UpdatePayoutStatus processing: %v", err)
	}

	paymentDate := "2030-03-20"
	paid, err := service.UpdatePayoutStatus(ctx, created.ID, PayoutStatusUpdate{
		Status:      models.PayoutStatusPaid,
		PaymentDate: &paymentDate,
	})
	if err != nil {
		t.Fatalf("UpdatePayoutStatus paid: %v", err)
	}
	if paid.PaymentDate == nil || *paid.PaymentDate != paymentDate {
		t.Fatalf("expected payment date %s, got %v", paymentDate, paid.PaymentDate)
	}
	if paid.ReceiptID == nil {
		t.Fatalf("expected a receipt to be issued")
	}

	receipt, err := repository.NewReceiptRepository(pool).GetByID(ctx, *paid.ReceiptID)
	if err != nil {
		t.Fatalf("GetByID receipt: %v", err)
	}
	if receipt.PayoutID != created.ID || receipt.Status != models.ReceiptStatusIssued {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	receipts := repository.NewReceiptRepository(pool)
	if err := receipts.AdvanceStatus(ctx, receipt.ID, models.ReceiptStatusDownloaded); err != nil {
		t.Fatalf("AdvanceStatus downloaded: %v", err)
	}
	if err := receipts.AdvanceStatus(ctx, receipt.ID, models.ReceiptStatusViewed); err != nil {
		t.Fatalf("AdvanceStatus viewed: %v", err)
	}
	advanced, err := receipts.GetByID(ctx, receipt.ID)
	if err != nil {
		t.Fatalf("GetByID advanced receipt: %v", err)
	}
	if advanced.Status != models.ReceiptStatusDownloaded {
		t.Fatalf("expected receipt status to stay downloaded, got %q", advanced.Status)
	}

	if _, err := service.UpdatePayoutStatus(ctx, created.ID, PayoutStatusUpdate{Status: models.PayoutStatusPending}); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition from paid, got %v", err)
	}
}

func TestPayoutServiceRejectsSessionsInActivePayout(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationPayoutService(pool)

	mentorID := createTestMentor(t, ctx, pool)
	t.Cleanup(func() { cleanupTestMentors(t, ctx, pool, mentorID) })

	sessionID := createTestSession(t, ctx, pool, mentorID, models.SessionTypeEvaluation, "2030-04-01", 3000)

	if _, err := service.CreatePayout(ctx, []int64{sessionID}); err != nil {
		t.Fatalf("first CreatePayout: %v", err)
	}

	if _, err := service.CreatePayout(ctx, []int64{sessionID}); !errors.Is(err, ErrSessionLocked) {
		t.Fatalf("expected ErrSessionLocked, got %v", err)
	}

	sessions := NewSessionService(
		pool,
		repository.NewSessionRepository(pool),
		repository.NewMentorRepository(pool),
		nil,
	)
	if err := sessions.DeleteSession(ctx, sessionID); !errors.Is(err, ErrSessionLocked) {
		t.Fatalf("expected ErrSessionLocked on delete, got %v", err)
	}
}

func TestPayoutServiceReleasesSessionsOnCancel(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationPayoutService(pool)

	mentorID := createTestMentor(t, ctx, pool)
	t.Cleanup(func() { cleanupTestMentors(t, ctx, pool, mentorID) })

	sessionID := createTestSession(t, ctx, pool, mentorID, models.SessionTypeRecorded, "2030-05-02", 2000)

	created, err := service.CreatePayout(ctx, []int64{sessionID})
	if err != nil {
		t.Fatalf("CreatePayout: %v", err)
	}
	if _, err := service.UpdatePayoutStatus(ctx, created.ID, PayoutStatusUpdate{Status: models.PayoutStatusCancelled}); err != nil {
		t.Fatalf("UpdatePayoutStatus cancelled: %v", err)
	}

	if _, err := service.CreatePayout(ctx, []int64{sessionID}); err != nil {
		t.Fatalf("expected cancelled payout to release its sessions, got %v", err)
	}
}

func TestPayoutListDateRangeAndSummary(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationPayoutService(pool)

	mentorID := createTestMentor(t, ctx, pool)
	t.Cleanup(func() { cleanupTestMentors(t, ctx, pool, mentorID) })

	paid := createTestPayout(t, ctx, service,
		createTestSession(t, ctx, pool, mentorID, models.SessionTypeLive, "2030-06-01", 500),
		createTestSession(t, ctx, pool, mentorID, models.SessionTypeLive, "2030-06-05", 500),
	)
	processing := createTestPayout(t, ctx, service,
		createTestSession(t, ctx, pool, mentorID, models.SessionTypeRecorded, "2030-06-10", 2000),
	)
	pending := createTestPayout(t, ctx, service,
		createTestSession(t, ctx, pool, mentorID, models.SessionTypeEvaluation, "2030-06-20", 1000),
		createTestSession(t, ctx, pool, mentorID, models.SessionTypeEvaluation, "2030-06-25", 2000),
	)
	cancelled := createTestPayout(t, ctx, service,
		createTestSession(t, ctx, pool, mentorID, models.SessionTypeLive, "2030-07-01", 4000),
	)

	moveTestPayout(t, ctx, service, paid.ID, models.PayoutStatusProcessing)
	paymentDate := "2030-06-30"
	if _, err := service.UpdatePayoutStatus(ctx, paid.ID, PayoutStatusUpdate{Status: models.PayoutStatusPaid, PaymentDate: &paymentDate}); err != nil {
		t.Fatalf("UpdatePayoutStatus paid: %v", err)
	}
	moveTestPayout(t, ctx, service, processing.ID, models.PayoutStatusProcessing)
	moveTestPayout(t, ctx, service, cancelled.ID, models.PayoutStatusCancelled)

	admin := Actor{UserID: 1, Role: models.RoleAdmin}
	cases := []struct {
		name     string
		from, to string
		want     []int64
	}{
		{name: "no range", want: []int64{paid.ID, processing.ID, pending.ID, cancelled.ID}},
		{name: "from only", from: "2030-06-11", want: []int64{paid.ID, processing.ID, pending.ID, cancelled.ID}},
		{name: "to only", to: "2030-06-02", want: []int64{paid.ID, processing.ID, pending.ID, cancelled.ID}},
		{name: "touching edges", from: "2030-06-05", to: "2030-06-10", want: []int64{paid.ID, processing.ID}},
		{name: "inside one range", from: "2030-06-21", to: "2030-06-22", want: []int64{pending.ID}},
		{name: "disjoint", from: "2030-06-11", to: "2030-06-19", want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payouts, total, summary, err := service.ListPayouts(ctx, admin, repository.PayoutListFilter{
				MentorID: mentorID,
				From:     tc.from,
				To:       tc.to,
			})
			if err != nil {
				t.Fatalf("ListPayouts: %v", err)
			}
			if summary != nil {
				t.Fatalf("expected no summary for admin, got %+v", summary)
			}
			if total != len(tc.want) || !sameIDs(payoutIDs(payouts), tc.want) {
				t.Fatalf("expected payouts %v, got %v (total %d)", tc.want, payoutIDs(payouts), total)
			}
		})
	}

	summary, err := repository.NewPayoutRepository(pool).Summary(ctx, mentorID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	wantEarnings := paid.FinalAmount + processing.FinalAmount
	wantPending := processing.FinalAmount + pending.FinalAmount
	if summary.TotalEarnings != wantEarnings || summary.PendingEarnings != wantPending {
		t.Fatalf("expected summary %d/%d, got %+v", wantEarnings, wantPending, summary)
	}
	if summary.TotalEarnings != 850+1700 || summary.PendingEarnings != 1700+2550 {
		t.Fatalf("unexpected summary amounts: %+v", summary)
	}
}

func TestPayoutListSearchTreatsWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationPayoutService(pool)

	mentorID := createTestMentor(t, ctx, pool)
	t.Cleanup(func() { cleanupTestMentors(t, ctx, pool, mentorID) })

	createTestPayout(t, ctx, service,
		createTestSession(t, ctx, pool, mentorID, models.SessionTypeLive, "2030-08-01", 1000),
	)

	admin := Actor{UserID: 1, Role: models.RoleAdmin}
	for _, search := range []string{"_", "%", "Test_Mentor"} {
		_, total, _, err := service.ListPayouts(ctx, admin, repository.PayoutListFilter{MentorID: mentorID, Search: search})
		if err != nil {
			t.Fatalf("ListPayouts %q: %v", search, err)
		}
		if total != 0 {
			t.Fatalf("expected %q to match nothing, got %d", search, total)
		}
	}

	_, total, _, err := service.ListPayouts(ctx, admin, repository.PayoutListFilter{MentorID: mentorID, Search: "test mentor"})
	if err != nil {
		t.Fatalf("ListPayouts: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected name search to match, got %d", total)
	}
}

func createTestPayout(t *testing.T, ctx context.Context, service *PayoutService, sessionIDs ...int64) *models.Payout {
	t.Helper()

	created, err := service.CreatePayout(ctx, sessionIDs)
	if err != nil {
		t.Fatalf("CreatePayout: %v", err)
	}
	return created
}

func moveTestPayout(t *testing.T, ctx context.Context, service *PayoutService, payoutID int64, status string) {
	t.Helper()

	if _, err := service.UpdatePayoutStatus(ctx, payoutID, PayoutStatusUpdate{Status: status}); err != nil {
		t.Fatalf("UpdatePayoutStatus %s: %v", status, err)
	}
}

func payoutIDs(payouts []models.Payout) []int64 {
	ids := make([]int64, 0, len(payouts))
	for _, p := range payouts {
		ids = append(ids, p.ID)
	}
	return ids
}

func sameIDs(got, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[int64]int, len(want))
	for _, id := range want {
		seen[id]++
	}
	for _, id := range got {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationPayoutService(pool *pgxpool.Pool) *PayoutService {
	return NewPayoutService(
		pool,
		repository.NewPayoutRepository(pool),
		repository.NewSessionRepository(pool),
		repository.NewMentorRepository(pool),
		fixedRates(payout.DefaultRates()),
		nil,
	)
}

func createTestMentor(t *testing.T, ctx context.Context, pool *pgxpool.Pool) int64 {
	t.Helper()

	mentor, err := repository.NewMentorRepository(pool).Create(ctx, repository.CreateMentorInput{
		Name:           "Test Mentor",
		Email:          fmt.Sprintf("payout-test-%d@example.com", time.Now().UnixNano()),
		Specialization: "Data Structures",
		HourlyRate:     4000,
	})
	if err != nil {
		t.Fatalf("Create mentor: %v", err)
	}
	return mentor.ID
}

func createTestSession(
	t *testing.T,
	ctx context.Context,
	pool *pgxpool.Pool,
	mentorID int64,
	sessionType string,
	date string,
	rate int64,
) int64 {
	t.Helper()

	session, err := repository.NewSessionRepository(pool).Create(ctx, repository.CreateSessionInput{
		MentorID:        mentorID,
		SessionType:     sessionType,
		Date:            date,
		StartTime:       "10:00",
		EndTime:         "11:00",
		DurationMinutes: 60,
		Rate:            rate,
		Status:          models.SessionStatusCompleted,
	})
	if err != nil {
		t.Fatalf("Create session: %v", err)
	}
	return session.ID
}

func cleanupTestMentors(t *testing.T, ctx context.Context, pool *pgxpool.Pool, mentorIDs ...int64) {
	t.Helper()

	if len(mentorIDs) == 0 {
		return
	}

	if _, err := pool.Exec(ctx, "DELETE FROM receipts WHERE mentor_id = ANY($1)", mentorIDs); err != nil {
		t.Fatalf("cleanup receipts: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM payout_sessions WHERE payout_id IN (SELECT id FROM payouts WHERE mentor_id = ANY($1))", mentorIDs); err != nil {
		t.Fatalf("cleanup payout sessions: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM payouts WHERE mentor_id = ANY($1)", mentorIDs); err != nil {
		t.Fatalf("cleanup payouts: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM sessions WHERE mentor_id = ANY($1)", mentorIDs); err != nil {
		t.Fatalf("cleanup sessions: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM mentors WHERE id = ANY($1)", mentorIDs); err != nil {
		t.Fatalf("cleanup mentors: %v", err)
	}
}
