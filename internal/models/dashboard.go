package models

type AdminDashboard struct {
	ActiveMentors    int       `json:"active_mentors"`
	TotalSessions    int       `json:"total_sessions"`
	TotalPayouts     int64     `json:"total_payouts"`
	PendingReviews   int       `json:"pending_reviews"`
	RecentPayouts    []Payout  `json:"recent_payouts"`
	UpcomingSessions []Session `json:"upcoming_sessions"`
}

type MentorDashboard struct {
	TotalSessions        int       `json:"total_sessions"`
	CompletedSessions    int       `json:"completed_sessions"`
	UpcomingSessions     int       `json:"upcoming_sessions"`
	CurrentMonthEarnings int64     `json:"current_month_earnings"`
	PendingPayouts       int64     `json:"pending_payouts"`
	LifetimeEarnings     int64     `json:"lifetime_earnings"`
	RecentSessions       []Session `json:"recent_sessions"`
	RecentPayouts        []Payout  `json:"recent_payouts"`
}
