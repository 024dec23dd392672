package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-assistant/internal/models"
)

const billColumns = `id, user_id, name, COALESCE(provider, ''), COALESCE(category, ''), amount_cents, due_date, status,
	COALESCE(payment_url, ''), paid_date, paid_amount_cents`

type HouseholdRepository struct {
	db *pgxpool.Pool
}

// NewHouseholdRepository создает репозиторий данных домохозяйства.
func NewHouseholdRepository(db *pgxpool.Pool) *HouseholdRepository {
	return &HouseholdRepository{db: db}
}

// ListBills возвращает счета пользователя в порядке срока оплаты.
func (r *HouseholdRepository) ListBills(ctx context.Context, userID uuid.UUID) ([]models.Bill, error) {
	return queryList(ctx, r.db, scanBill,
		`SELECT `+billColumns+`
		 FROM bills
		 WHERE user_id = $1
		 ORDER BY due_date, created_at`,
		userID,
	)
}

// ListVehicles возвращает автомобили пользователя.
func (r *HouseholdRepository) ListVehicles(ctx context.Context, userID uuid.UUID) ([]models.Vehicle, error) {
	return queryList(ctx, r.db, func(row pgx.Row, v *models.Vehicle) error {
		return row.Scan(&v.ID, &v.UserID, &v.Year, &v.Make, &v.Model, &v.Nickname, &v.LicensePlate, &v.RegistrationExpiry)
	},
		`SELECT id, user_id, COALESCE(year, 0), make, model, COALESCE(nickname, ''), COALESCE(license_plate, ''), registration_expiry
		 FROM vehicles
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
}

// ListPets возвращает питомцев пользователя.
func (r *HouseholdRepository) ListPets(ctx context.Context, userID uuid.UUID) ([]models.Pet, error) {
	return queryList(ctx, r.db, func(row pgx.Row, p *models.Pet) error {
		return row.Scan(&p.ID, &p.UserID, &p.Name, &p.Species, &p.Breed, &p.VetName)
	},
		`SELECT id, user_id, name, COALESCE(species, ''), COALESCE(breed, ''), COALESCE(vet_name, '')
		 FROM pets
		 WHERE user_id = $1
		 ORDER BY name`,
		userID,
	)
}

// ListAppointmentsFrom возвращает встречи начиная с указанного дня.
func (r *HouseholdRepository) ListAppointmentsFrom(ctx context.Context, userID uuid.UUID, from time.Time) ([]models.Appointment, error) {
	return queryList(ctx, r.db, scanAppointment,
		`SELECT id, user_id, title, appointment_date, to_char(appointment_time, 'HH24:MI'), COALESCE(location, ''), COALESCE(notes, '')
		 FROM appointments
		 WHERE user_id = $1 AND appointment_date >= $2
		 ORDER BY appointment_date, appointment_time NULLS LAST`,
		userID, from,
	)
}

// ListInsurancePolicies возвращает страховые полисы пользователя.
func (r *HouseholdRepository) ListInsurancePolicies(ctx context.Context, userID uuid.UUID) ([]models.InsurancePolicy, error) {
	return queryList(ctx, r.db, func(row pgx.Row, p *models.InsurancePolicy) error {
		return row.Scan(&p.ID, &p.UserID, &p.PolicyType, &p.Provider, &p.PolicyNumber, &p.PremiumCents, &p.RenewalDate)
	},
		`SELECT id, user_id, policy_type, provider, COALESCE(policy_number, ''), premium_cents, renewal_date
		 FROM insurance_policies
		 WHERE user_id = $1
		 ORDER BY renewal_date NULLS LAST`,
		userID,
	)
}

// ListMedicalRecords возвращает медицинские записи пользователя.
func (r *HouseholdRepository) ListMedicalRecords(ctx context.Context, userID uuid.UUID) ([]models.MedicalRecord, error) {
	return queryList(ctx, r.db, func(row pgx.Row, m *models.MedicalRecord) error {
		return row.Scan(&m.ID, &m.UserID, &m.PersonName, &m.RecordType, &m.Title, &m.Provider, &m.RecordDate)
	},
		`SELECT id, user_id, person_name, record_type, title, COALESCE(provider, ''), record_date
		 FROM medical_records
		 WHERE user_id = $1
		 ORDER BY record_date DESC NULLS LAST`,
		userID,
	)
}

// ListServiceContacts возвращает контакты сервисов пользователя.
func (r *HouseholdRepository) ListServiceContacts(ctx context.Context, userID uuid.UUID) ([]models.ServiceContact, error) {
	return queryList(ctx, r.db, func(row pgx.Row, c *models.ServiceContact) error {
		return row.Scan(&c.ID, &c.UserID, &c.Name, &c.ServiceType, &c.Phone, &c.Email)
	},
		`SELECT id, user_id, name, service_type, COALESCE(phone, ''), COALESCE(email, '')
		 FROM service_contacts
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
}

// ListGrowthRecords возвращает записи роста, новые первыми.
func (r *HouseholdRepository) ListGrowthRecords(ctx context.Context, userID uuid.UUID) ([]models.GrowthRecord, error) {
	return queryList(ctx, r.db, func(row pgx.Row, g *models.GrowthRecord) error {
		return row.Scan(&g.ID, &g.UserID, &g.PersonName, &g.RecordDate, &g.ShoeSize, &g.HeightCm, &g.WeightKg)
	},
		`SELECT id, user_id, person_name, record_date, COALESCE(shoe_size, ''), height_cm::float8, weight_kg::float8
		 FROM growth_records
		 WHERE user_id = $1
		 ORDER BY record_date DESC`,
		userID,
	)
}

// ListTransactions возвращает операции за отрезок [from, to].
func (r *HouseholdRepository) ListTransactions(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Transaction, error) {
	return queryList(ctx, r.db, func(row pgx.Row, t *models.Transaction) error {
		return row.Scan(&t.ID, &t.UserID, &t.TransactionType, &t.Category, &t.Description, &t.AmountCents, &t.TransactionDate)
	},
		`SELECT id, user_id, transaction_type, COALESCE(category, ''), COALESCE(description, ''), amount_cents, transaction_date
		 FROM transactions
		 WHERE user_id = $1 AND transaction_date BETWEEN $2 AND $3
		 ORDER BY transaction_date`,
		userID, from, to,
	)
}

// ListShoppingItems возвращает список покупок.
func (r *HouseholdRepository) ListShoppingItems(ctx context.Context, userID uuid.UUID) ([]models.ShoppingItem, error) {
	return queryList(ctx, r.db, func(row pgx.Row, i *models.ShoppingItem) error {
		return row.Scan(&i.ID, &i.UserID, &i.Name, &i.Checked, &i.CreatedAt)
	},
		`SELECT id, user_id, name, checked, created_at
		 FROM shopping_items
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
}

// CreateAppointment создает встречу или напоминание.
func (r *HouseholdRepository) CreateAppointment(ctx context.Context, appointment models.Appointment) (models.Appointment, error) {
	if strings.TrimSpace(appointment.Title) == "" {
		return models.Appointment{}, ErrInvalid
	}

	var created models.Appointment
	err := scanAppointment(r.db.QueryRow(ctx,
		`INSERT INTO appointments (user_id, title, appointment_date, appointment_time, location, notes)
		 VALUES ($1, $2, $3, $4::time, NULLIF($5, ''), NULLIF($6, ''))
		 RETURNING id, user_id, title, appointment_date, to_char(appointment_time, 'HH24:MI'), COALESCE(location, ''), COALESCE(notes, '')`,
		appointment.UserID,
		appointment.Title,
		appointment.AppointmentDate,
		appointment.AppointmentTime,
		appointment.Location,
		appointment.Notes,
	), &created)
	if err != nil {
		return models.Appointment{}, err
	}

	return created, nil
}

// AddShoppingItem добавляет позицию в список покупок.
func (r *HouseholdRepository) AddShoppingItem(ctx context.Context, userID uuid.UUID, name string) (models.ShoppingItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ShoppingItem{}, ErrInvalid
	}

	var item models.ShoppingItem
	err := r.db.QueryRow(ctx,
		`INSERT INTO shopping_items (user_id, name)
		 VALUES ($1, $2)
		 RETURNING id, user_id, name, checked, created_at`,
		userID, name,
	).Scan(&item.ID, &item.UserID, &item.Name, &item.Checked, &item.CreatedAt)
	if err != nil {
		return models.ShoppingItem{}, err
	}

	return item, nil
}

// MarkBillPaid отмечает неоплаченный счет оплаченным на сумму счета.
// Если счет удален или уже оплачен, возвращается ErrNotFound.
func (r *HouseholdRepository) MarkBillPaid(ctx context.Context, userID, billID uuid.UUID, paidDate time.Time) (models.Bill, error) {
	var bill models.Bill
	err := scanBill(r.db.QueryRow(ctx,
		`UPDATE bills
		 SET status = 'paid', paid_date = $3, paid_amount_cents = amount_cents, updated_at = now()
		 WHERE id = $1 AND user_id = $2 AND status = 'pending'
		 RETURNING `+billColumns,
		billID, userID, paidDate,
	), &bill)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Bill{}, ErrNotFound
		}
		return models.Bill{}, err
	}

	return bill, nil
}

func scanBill(row pgx.Row, b *models.Bill) error {
	return row.Scan(&b.ID, &b.UserID, &b.Name, &b.Provider, &b.Category, &b.AmountCents, &b.DueDate, &b.Status,
		&b.PaymentURL, &b.PaidDate, &b.PaidAmountCents)
}

func scanAppointment(row pgx.Row, a *models.Appointment) error {
	return row.Scan(&a.ID, &a.UserID, &a.Title, &a.AppointmentDate, &a.AppointmentTime, &a.Location, &a.Notes)
}

func queryList[T any](ctx context.Context, db *pgxpool.Pool, scan func(pgx.Row, *T) error, query string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var item T
		if err := scan(rows, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
