package models

import "time"

const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusPaid       = "paid"
	PayoutStatusCancelled  = "cancelled"
)

type PayoutBreakdown struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type TaxInfo struct {
	Type   string `json:"type"`
	Rate   int64  `json:"rate"`
	Amount int64  `json:"amount"`
}

type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Payout struct {
	ID          int64             `json:"id"`
	MentorID    int64             `json:"mentor_id"`
	MentorName  string            `json:"mentor_name"`
	DateRange   DateRange         `json:"date_range"`
	SessionIDs  []int64           `json:"sessions"`
	BasePayout  int64             `json:"base_payout"`
	Breakdown   []PayoutBreakdown `json:"breakdown"`
	Taxes       []TaxInfo         `json:"taxes"`
	PlatformFee int64             `json:"platform_fee"`
	FinalAmount int64             `json:"final_amount"`
	Status      string            `json:"status"`
	PaymentDate *string           `json:"payment_date,omitempty"`
	ReceiptID   *string           `json:"receipt_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type PayoutSummary struct {
	TotalEarnings   int64 `json:"total_earnings"`
	PendingEarnings int64 `json:"pending_earnings"`
}

type PayoutSettings struct {
	GSTPercent         int64     `json:"gst_percent"`
	PlatformFeePercent int64     `json:"platform_fee_percent"`
	UpdatedAt          time.Time `json:"updated_at"`
}
