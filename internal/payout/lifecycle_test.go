package payout

import (
	"testing"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	statuses := []string{
		models.PayoutStatusPending,
		models.PayoutStatusProcessing,
		models.PayoutStatusPaid,
		models.PayoutStatusCancelled,
	}
	allowed := map[[2]string]bool{
		{models.PayoutStatusPending, models.PayoutStatusProcessing}:   true,
		{models.PayoutStatusPending, models.PayoutStatusPaid}:         true,
		{models.PayoutStatusPending, models.PayoutStatusCancelled}:    true,
		{models.PayoutStatusProcessing, models.PayoutStatusPaid}:      true,
		{models.PayoutStatusProcessing, models.PayoutStatusCancelled}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			assert.Equal(t, allowed[[2]string{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, CanTransition("unknown", models.PayoutStatusPaid))
}

func TestKnownStatus(t *testing.T) {
	assert.True(t, KnownStatus(models.PayoutStatusProcessing))
	assert.False(t, KnownStatus("refunded"))
}
