// Package payout derives a payout breakdown from a set of completed sessions.
package payout

import (
	"errors"
	"fmt"
	"math"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
)

var (
	ErrNoSessions          = errors.New("no sessions selected")
	ErrMixedMentors        = errors.New("sessions belong to different mentors")
	ErrSessionNotCompleted = errors.New("session is not completed")
	ErrDuplicateSession    = errors.New("duplicate session")
	ErrInvalidRate         = errors.New("session rate is out of range")
	ErrUnknownSessionType  = errors.New("unknown session type")
	ErrInvalidPercent      = errors.New("percentage must be between 0 and 100")
)

const TaxTypeGST = "GST"

// MaxSessionRate is the largest rate, in rupees, a single session may carry.
const MaxSessionRate int64 = 10_000_000

// maxBase keeps base*percent within int64 for percentages up to 100.
const maxBase = math.MaxInt64 / 100

// Rates are whole percentages applied to the base payout.
type Rates struct {
	GSTPercent         int64
	PlatformFeePercent int64
}

func DefaultRates() Rates {
	return Rates{GSTPercent: 5, PlatformFeePercent: 10}
}

func (r Rates) Validate() error {
	if r.GSTPercent < 0 || r.GSTPercent > 100 || r.PlatformFeePercent < 0 || r.PlatformFeePercent > 100 {
		return ErrInvalidPercent
	}
	return nil
}

type Result struct {
	MentorID    int64
	DateRange   models.DateRange
	SessionIDs  []int64
	BasePayout  int64
	Breakdown   []models.PayoutBreakdown
	Taxes       []models.TaxInfo
	PlatformFee int64
	FinalAmount int64
}

// Payout turns the result into a new pending payout record.
func (r *Result) Payout() models.Payout {
	return models.Payout{
		MentorID:    r.MentorID,
		DateRange:   r.DateRange,
		SessionIDs:  append([]int64(nil), r.SessionIDs...),
		BasePayout:  r.BasePayout,
		Breakdown:   append([]models.PayoutBreakdown(nil), r.Breakdown...),
		Taxes:       append([]models.TaxInfo(nil), r.Taxes...),
		PlatformFee: r.PlatformFee,
		FinalAmount: r.FinalAmount,
		Status:      models.PayoutStatusPending,
	}
}

type lineLabel struct {
	sessionType string
	singular    string
}

// breakdownOrder fixes both the line order and the wording of each line.
var breakdownOrder = []lineLabel{
	{sessionType: models.SessionTypeLive, singular: "Live Session"},
	{sessionType: models.SessionTypeRecorded, singular: "Recorded Review"},
	{sessionType: models.SessionTypeEvaluation, singular: "Evaluation"},
}

type group struct {
	count  int
	amount int64
}

func Calculate(sessions []models.Session, rates Rates) (*Result, error) {
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}

	mentorID := sessions[0].MentorID
	from := sessions[0].Date
	to := sessions[0].Date
	seen := make(map[int64]struct{}, len(sessions))
	groups := make(map[string]*group, len(breakdownOrder))
	ids := make([]int64, 0, len(sessions))
	var base int64

	for _, session := range sessions {
		if _, dup := seen[session.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateSession, session.ID)
		}
		seen[session.ID] = struct{}{}

		if session.MentorID != mentorID {
			return nil, ErrMixedMentors
		}
		if session.Status != models.SessionStatusCompleted {
			return nil, fmt.Errorf("%w: %d", ErrSessionNotCompleted, session.ID)
		}
		if session.Rate <= 0 || session.Rate > maxBase-base {
			return nil, fmt.Errorf("%w: %d", ErrInvalidRate, session.ID)
		}
		if !KnownSessionType(session.SessionType) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSessionType, session.SessionType)
		}

		g, ok := groups[session.SessionType]
		if !ok {
			g = &group{}
			groups[session.SessionType] = g
		}
		g.count++
		g.amount += session.Rate
		base += session.Rate
		ids = append(ids, session.ID)

		if session.Date < from {
			from = session.Date
		}
		if session.Date > to {
			to = session.Date
		}
	}

	breakdown := make([]models.PayoutBreakdown, 0, len(groups))
	for _, label := range breakdownOrder {
		g, ok := groups[label.sessionType]
		if !ok {
			continue
		}
		breakdown = append(breakdown, models.PayoutBreakdown{
			Amount:      g.amount,
			Description: describe(g.count, label.singular),
		})
	}

	gst := percentOf(base, rates.GSTPercent)
	fee := percentOf(base, rates.PlatformFeePercent)

	return &Result{
		MentorID:   mentorID,
		DateRange:  models.DateRange{From: from, To: to},
		SessionIDs: ids,
		BasePayout: base,
		Breakdown:  breakdown,
		Taxes: []models.TaxInfo{
			{Type: TaxTypeGST, Rate: rates.GSTPercent, Amount: gst},
		},
		PlatformFee: fee,
		FinalAmount: base - gst - fee,
	}, nil
}

func KnownSessionType(sessionType string) bool {
	for _, label := range breakdownOrder {
		if label.sessionType == sessionType {
			return true
		}
	}
	return false
}

func describe(count int, singular string) string {
	if count > 1 {
		return fmt.Sprintf("%d %ss", count, singular)
	}
	return fmt.Sprintf("%d %s", count, singular)
}

// percentOf rounds half away from zero; base is never negative here.
// Splitting base by 100 first keeps every intermediate within int64.
func percentOf(base, percent int64) int64 {
	return base/100*percent + (base%100*percent+50)/100
}
