package payout

import (
	"math"
	"testing"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completed(id, mentorID int64, sessionType, date string, rate int64) models.Session {
	return models.Session{
		ID:          id,
		MentorID:    mentorID,
		SessionType: sessionType,
		Date:        date,
		Rate:        rate,
		Status:      models.SessionStatusCompleted,
	}
}

func TestCalculateMatchesWorkedExample(t *testing.T) {
	sessions := []models.Session{
		completed(1, 7, models.SessionTypeLive, "2025-05-18", 4000),
		completed(2, 7, models.SessionTypeLive, "2025-05-20", 4000),
		completed(3, 7, models.SessionTypeEvaluation, "2025-05-19", 3000),
	}

	result, err := Calculate(sessions, DefaultRates())
	require.NoError(t, err)

	assert.Equal(t, int64(11000), result.BasePayout)
	require.Len(t, result.Taxes, 1)
	assert.Equal(t, models.TaxInfo{Type: "GST", Rate: 5, Amount: 550}, result.Taxes[0])
	assert.Equal(t, int64(1100), result.PlatformFee)
	assert.Equal(t, int64(9350), result.FinalAmount)
	assert.Equal(t, []models.PayoutBreakdown{
		{Amount: 8000, Description: "2 Live Sessions"},
		{Amount: 3000, Description: "1 Evaluation"},
	}, result.Breakdown)
	assert.Equal(t, models.DateRange{From: "2025-05-18", To: "2025-05-20"}, result.DateRange)
	assert.Equal(t, []int64{1, 2, 3}, result.SessionIDs)
	assert.Equal(t, int64(7), result.MentorID)
}

func TestCalculateFinalAmountIdentity(t *testing.T) {
	rates := []int64{1, 333, 4000, 4999, 12345, 99999}
	for i := 1; i <= len(rates); i++ {
		sessions := make([]models.Session, 0, i)
		var base int64
		for j, rate := range rates[:i] {
			sessions = append(sessions, completed(int64(j+1), 3, models.SessionTypeRecorded, "2025-04-01", rate))
			base += rate
		}

		result, err := Calculate(sessions, DefaultRates())
		require.NoError(t, err)

		gst := int64(math.Round(0.05 * float64(base)))
		fee := int64(math.Round(0.10 * float64(base)))
		assert.Equal(t, base, result.BasePayout)
		assert.Equal(t, base-gst-fee, result.FinalAmount, "base %d", base)
	}
}

func TestCalculateBreakdownHasOneLinePerType(t *testing.T) {
	sessions := []models.Session{
		completed(1, 1, models.SessionTypeEvaluation, "2025-05-03", 1000),
		completed(2, 1, models.SessionTypeRecorded, "2025-05-01", 2000),
		completed(3, 1, models.SessionTypeRecorded, "2025-05-02", 2000),
		completed(4, 1, models.SessionTypeLive, "2025-05-04", 3000),
	}

	result, err := Calculate(sessions, DefaultRates())
	require.NoError(t, err)

	assert.Equal(t, []models.PayoutBreakdown{
		{Amount: 3000, Description: "1 Live Session"},
		{Amount: 4000, Description: "2 Recorded Reviews"},
		{Amount: 1000, Description: "1 Evaluation"},
	}, result.Breakdown)

	for _, session := range sessions {
		assert.LessOrEqual(t, result.DateRange.From, session.Date)
		assert.GreaterOrEqual(t, result.DateRange.To, session.Date)
	}
}

func TestCalculateRoundsHalfUp(t *testing.T) {
	// 5% of 10 is 0.5 and 10% of 5 is 0.5
	result, err := Calculate([]models.Session{completed(1, 1, models.SessionTypeLive, "2025-01-01", 10)}, DefaultRates())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Taxes[0].Amount)
	assert.Equal(t, int64(1), result.PlatformFee)
	assert.Equal(t, int64(8), result.FinalAmount)

	result, err = Calculate([]models.Session{completed(1, 1, models.SessionTypeLive, "2025-01-01", 5)}, DefaultRates())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.PlatformFee)
}

func TestCalculateUsesCustomRates(t *testing.T) {
	result, err := Calculate(
		[]models.Session{completed(1, 1, models.SessionTypeLive, "2025-01-01", 2000)},
		Rates{GSTPercent: 18, PlatformFeePercent: 0},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(360), result.Taxes[0].Amount)
	assert.Equal(t, int64(18), result.Taxes[0].Rate)
	assert.Equal(t, int64(0), result.PlatformFee)
	assert.Equal(t, int64(1640), result.FinalAmount)
}

func TestCalculateRejectsMalformedSelections(t *testing.T) {
	scheduled := completed(2, 1, models.SessionTypeLive, "2025-01-02", 100)
	scheduled.Status = models.SessionStatusScheduled

	cases := []struct {
		name     string
		sessions []models.Session
		rates    Rates
		want     error
	}{
		{name: "empty", sessions: nil, rates: DefaultRates(), want: ErrNoSessions},
		{
			name: "mixed mentors",
			sessions: []models.Session{
				completed(1, 1, models.SessionTypeLive, "2025-01-01", 100),
				completed(2, 2, models.SessionTypeLive, "2025-01-01", 100),
			},
			rates: DefaultRates(),
			want:  ErrMixedMentors,
		},
		{
			name: "not completed",
			sessions: []models.Session{
				completed(1, 1, models.SessionTypeLive, "2025-01-01", 100),
				scheduled,
			},
			rates: DefaultRates(),
			want:  ErrSessionNotCompleted,
		},
		{
			name: "duplicate",
			sessions: []models.Session{
				completed(1, 1, models.SessionTypeLive, "2025-01-01", 100),
				completed(1, 1, models.SessionTypeLive, "2025-01-01", 100),
			},
			rates: DefaultRates(),
			want:  ErrDuplicateSession,
		},
		{
			name:     "zero rate",
			sessions: []models.Session{completed(1, 1, models.SessionTypeLive, "2025-01-01", 0)},
			rates:    DefaultRates(),
			want:     ErrInvalidRate,
		},
		{
			name:     "negative rate",
			sessions: []models.Session{completed(1, 1, models.SessionTypeLive, "2025-01-01", -5)},
			rates:    DefaultRates(),
			want:     ErrInvalidRate,
		},
		{
			name: "total would overflow",
			sessions: []models.Session{
				completed(1, 1, models.SessionTypeLive, "2025-01-01", math.MaxInt64/2+1),
				completed(2, 1, models.SessionTypeLive, "2025-01-02", math.MaxInt64/2+1),
			},
			rates: DefaultRates(),
			want:  ErrInvalidRate,
		},
		{
			name:     "base too large for percentages",
			sessions: []models.Session{completed(1, 1, models.SessionTypeLive, "2025-01-01", math.MaxInt64/100+1)},
			rates:    DefaultRates(),
			want:     ErrInvalidRate,
		},
		{
			name:     "unknown type",
			sessions: []models.Session{completed(1, 1, "workshop", "2025-01-01", 100)},
			rates:    DefaultRates(),
			want:     ErrUnknownSessionType,
		},
		{
			name:     "bad percent",
			sessions: []models.Session{completed(1, 1, models.SessionTypeLive, "2025-01-01", 100)},
			rates:    Rates{GSTPercent: 101},
			want:     ErrInvalidPercent,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Calculate(tc.sessions, tc.rates)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestResultPayoutStartsPending(t *testing.T) {
	result, err := Calculate([]models.Session{completed(9, 4, models.SessionTypeLive, "2025-02-01", 4000)}, DefaultRates())
	require.NoError(t, err)

	record := result.Payout()
	assert.Equal(t, models.PayoutStatusPending, record.Status)
	assert.Equal(t, int64(4), record.MentorID)
	assert.Equal(t, []int64{9}, record.SessionIDs)
	assert.Equal(t, int64(3400), record.FinalAmount)
}

func TestCalculateAcceptsLargestTotal(t *testing.T) {
	result, err := Calculate([]models.Session{
		completed(1, 5, models.SessionTypeLive, "2025-03-01", maxBase-1),
		completed(2, 5, models.SessionTypeLive, "2025-03-02", 1),
	}, Rates{GSTPercent: 100, PlatformFeePercent: 0})
	require.NoError(t, err)

	assert.Equal(t, int64(maxBase), result.BasePayout)
	assert.Equal(t, int64(0), result.FinalAmount)
	assert.Equal(t, int64(maxBase), result.Taxes[0].Amount)
}
