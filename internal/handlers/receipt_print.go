package handlers

import (
	"html/template"
	"strconv"
	"strings"
)

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"inr":   formatINR,
	"title": titleCase,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Receipt {{.ID}}</title>
<style>
body { font-family: system-ui, sans-serif; color: #111827; margin: 2rem; }
table { width: 100%; border-collapse: collapse; margin: 1rem 0; }
th, td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #e5e7eb; }
td.amount, th.amount { text-align: right; }
.total td { font-weight: 600; border-top: 2px solid #111827; }
.meta { color: #4b5563; }
@media print { .no-print { display: none; } }
</style>
</head>
<body>
<h1>EduPayout payout receipt</h1>
<p class="meta">Receipt {{.ID}} &middot; issued {{.IssueDate}}{{with .PaymentDate}} &middot; paid {{.}}{{end}}</p>
<p><strong>{{.MentorName}}</strong><br>Sessions from {{.DateRange.From}} to {{.DateRange.To}}</p>

<table>
<thead><tr><th>Date</th><th>Type</th><th>Time</th><th class="amount">Rate</th></tr></thead>
<tbody>
{{range .Sessions}}<tr><td>{{.Date}}</td><td>{{title .SessionType}}</td><td>{{.StartTime}} - {{.EndTime}}</td><td class="amount">{{inr .Rate}}</td></tr>
{{end}}</tbody>
</table>

<table>
<tbody>
{{range .Breakdown}}<tr><td>{{.Description}}</td><td class="amount">{{inr .Amount}}</td></tr>
{{end}}<tr><td>Base payout</td><td class="amount">{{inr .BasePayout}}</td></tr>
{{range .Taxes}}<tr><td>{{.Type}} ({{.Rate}}%)</td><td class="amount">- {{inr .Amount}}</td></tr>
{{end}}<tr><td>Platform fee</td><td class="amount">- {{inr .PlatformFee}}</td></tr>
<tr class="total"><td>Final amount</td><td class="amount">{{inr .FinalAmount}}</td></tr>
</tbody>
</table>
{{with .Message}}<p>{{.}}</p>{{end}}
<button class="no-print" onclick="window.print()">Print</button>
</body>
</html>
`))

// formatINR renders whole rupees with Indian digit grouping, e.g. ₹12,34,567.
func formatINR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	if len(digits) <= 3 {
		return sign + "₹" + digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return sign + "₹" + strings.Join(groups, ",") + "," + tail
}

func titleCase(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
