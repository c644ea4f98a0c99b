package models

import "time"

const (
	ReceiptStatusIssued     = "issued"
	ReceiptStatusViewed     = "viewed"
	ReceiptStatusDownloaded = "downloaded"
)

// ReceiptRecord is the stored part of a receipt.
type ReceiptRecord struct {
	ID         string    `json:"id"`
	PayoutID   int64     `json:"payout_id"`
	MentorID   int64     `json:"mentor_id"`
	MentorName string    `json:"mentor_name"`
	IssueDate  string    `json:"issue_date"`
	Status     string    `json:"status"`
	Message    *string   `json:"message,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Receipt is the read-only projection of a paid payout.
type Receipt struct {
	ID          string            `json:"id"`
	PayoutID    int64             `json:"payout_id"`
	MentorID    int64             `json:"mentor_id"`
	MentorName  string            `json:"mentor_name"`
	IssueDate   string            `json:"issue_date"`
	PaymentDate *string           `json:"payment_date,omitempty"`
	DateRange   DateRange         `json:"date_range"`
	Sessions    []Session         `json:"sessions"`
	BasePayout  int64             `json:"base_payout"`
	Breakdown   []PayoutBreakdown `json:"breakdown"`
	Taxes       []TaxInfo         `json:"taxes"`
	PlatformFee int64             `json:"platform_fee"`
	FinalAmount int64             `json:"final_amount"`
	Status      string            `json:"status"`
	Message     *string           `json:"message,omitempty"`
}
