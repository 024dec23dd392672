package ai

// InsightInput is the business snapshot sent to the model when it is asked
// for dashboard insights. Amounts are cents.
type InsightInput struct {
	Today           string   `json:"today"`
	IncomeCents     int64    `json:"income_this_month_cents"`
	ExpenseCents    int64    `json:"expenses_this_month_cents"`
	OverdueBills    []string `json:"overdue_bills,omitempty"`
	DueSoonBills    []string `json:"due_this_week_bills,omitempty"`
	Last7DaysCents  int64    `json:"expenses_last_7_days_cents"`
	Prior7DaysCents int64    `json:"expenses_prior_7_days_cents"`
	TopCategories   []string `json:"top_expense_categories_this_month,omitempty"`
	Appointments    int      `json:"appointments_next_7_days"`
	ExistingTitles  []string `json:"existing_titles,omitempty"`
	MaxInsights     int      `json:"max_insights"`
	AllowedTypes    []string `json:"allowed_types"`
}

// InsightDraft is one model-proposed insight. Drafts that fail these tags are
// dropped one by one.
type InsightDraft struct {
	Type     string  `json:"type" validate:"required,oneof=win warning tip action"`
	Title    string  `json:"title" validate:"required,max=80"`
	Body     string  `json:"body" validate:"required,max=400"`
	CTALabel *string `json:"cta_label,omitempty" validate:"omitempty,max=40"`
	CTARoute *string `json:"cta_route,omitempty" validate:"omitempty,startswith=/,max=120"`
}
