package payout

import "github.com/abhishekjoshi1998/EduPayout/internal/models"

var transitions = map[string][]string{
	models.PayoutStatusPending:    {models.PayoutStatusProcessing, models.PayoutStatusPaid, models.PayoutStatusCancelled},
	models.PayoutStatusProcessing: {models.PayoutStatusPaid, models.PayoutStatusCancelled},
}

// CanTransition reports whether a payout may move from one status to another.
// Paid and cancelled payouts are final.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func KnownStatus(status string) bool {
	switch status {
	case models.PayoutStatusPending, models.PayoutStatusProcessing, models.PayoutStatusPaid, models.PayoutStatusCancelled:
		return true
	default:
		return false
	}
}
