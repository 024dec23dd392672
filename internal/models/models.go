package models

import (
	"time"

	"github.com/google/uuid"
)

type BillStatus string

type TransactionType string

type InsightType string

type InsightSource string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPaid    BillStatus = "paid"

	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"

	InsightTypeWin     InsightType = "win"
	InsightTypeWarning InsightType = "warning"
	InsightTypeTip     InsightType = "tip"
	InsightTypeAction  InsightType = "action"

	InsightSourceRule InsightSource = "rule"
	InsightSourceAI   InsightSource = "ai"
)

type Bill struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Name            string     `json:"name"`
	Provider        string     `json:"provider,omitempty"`
	Category        string     `json:"category,omitempty"`
	AmountCents     int64      `json:"amount_cents"`
	DueDate         time.Time  `json:"due_date"`
	Status          BillStatus `json:"status"`
	PaymentURL      string     `json:"payment_url,omitempty"`
	PaidDate        *time.Time `json:"paid_date,omitempty"`
	PaidAmountCents *int64     `json:"paid_amount_cents,omitempty"`
}

type Vehicle struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"user_id"`
	Year               int        `json:"year,omitempty"`
	Make               string     `json:"make"`
	Model              string     `json:"model"`
	Nickname           string     `json:"nickname,omitempty"`
	LicensePlate       string     `json:"license_plate,omitempty"`
	RegistrationExpiry *time.Time `json:"registration_expiry,omitempty"`
}

type Pet struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	Name    string    `json:"name"`
	Species string    `json:"species,omitempty"`
	Breed   string    `json:"breed,omitempty"`
	VetName string    `json:"vet_name,omitempty"`
}

type Appointment struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Title           string    `json:"title"`
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime *string   `json:"appointment_time,omitempty"`
	Location        string    `json:"location,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

type InsurancePolicy struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	PolicyType   string     `json:"policy_type"`
	Provider     string     `json:"provider"`
	PolicyNumber string     `json:"policy_number,omitempty"`
	PremiumCents int64      `json:"premium_cents"`
	RenewalDate  *time.Time `json:"renewal_date,omitempty"`
}

type MedicalRecord struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	PersonName string     `json:"person_name"`
	RecordType string     `json:"record_type"`
	Title      string     `json:"title"`
	Provider   string     `json:"provider,omitempty"`
	RecordDate *time.Time `json:"record_date,omitempty"`
}

type ServiceContact struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	ServiceType string    `json:"service_type"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
}

type GrowthRecord struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	PersonName string    `json:"person_name"`
	RecordDate time.Time `json:"record_date"`
	ShoeSize   string    `json:"shoe_size,omitempty"`
	HeightCm   *float64  `json:"height_cm,omitempty"`
	WeightKg   *float64  `json:"weight_kg,omitempty"`
}

type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Category        string          `json:"category"`
	Description     string          `json:"description,omitempty"`
	AmountCents     int64           `json:"amount_cents"`
	TransactionDate time.Time       `json:"transaction_date"`
}

type ShoppingItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Checked   bool      `json:"checked"`
	CreatedAt time.Time `json:"created_at"`
}

type DashboardInsight struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	InsightDate time.Time     `json:"insight_date"`
	InsightType InsightType   `json:"type"`
	Title       string        `json:"title"`
	Body        string        `json:"body"`
	CTALabel    *string       `json:"cta_label,omitempty"`
	CTARoute    *string       `json:"cta_route,omitempty"`
	Source      InsightSource `json:"source"`
	Dismissed   bool          `json:"dismissed"`
	CreatedAt   time.Time     `json:"created_at"`
}
