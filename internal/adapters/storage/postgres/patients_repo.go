package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"rural-health-core/internal/domain/patients"
)

type PatientsRepo struct {
	db *sql.DB
}

func NewPatientsRepo(db *sql.DB) *PatientsRepo {
	return &PatientsRepo{db: db}
}

const patientColumns = `
	id, user_id,
	name, age, gender, village,
	phone_number, emergency_contact, blood_group,
	allergies, chronic_conditions,
	created_at, updated_at`

func (r *PatientsRepo) Create(ctx context.Context, p patients.Patient) error {
	allergies, err := toJSON(nonNilStrings(p.Allergies))
	if err != nil {
		return err
	}
	chronic, err := toJSON(nonNilStrings(p.ChronicConditions))
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO patients (`+patientColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		p.ID,
		p.UserID,
		p.Name,
		p.Age,
		p.Gender,
		p.Village,
		p.PhoneNumber,
		p.EmergencyContact,
		p.BloodGroup,
		allergies,
		chronic,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// Update no toca village ni user_id.
func (r *PatientsRepo) Update(ctx context.Context, p patients.Patient) error {
	allergies, err := toJSON(nonNilStrings(p.Allergies))
	if err != nil {
		return err
	}
	chronic, err := toJSON(nonNilStrings(p.ChronicConditions))
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET
			name = $2,
			age = $3,
			phone_number = $4,
			emergency_contact = $5,
			blood_group = $6,
			allergies = $7,
			chronic_conditions = $8,
			updated_at = $9
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Age,
		p.PhoneNumber,
		p.EmergencyContact,
		p.BloodGroup,
		allergies,
		chronic,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return patients.ErrNotFound
	}
	return nil
}

func (r *PatientsRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return patients.Patient{}, patients.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return patients.Patient{}, patients.ErrNotFound
	}
	return p, err
}

func (r *PatientsRepo) ListByUser(ctx context.Context, userID string) ([]patients.Patient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]patients.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(s rowScanner) (patients.Patient, error) {
	var p patients.Patient
	var allergies, chronic []byte
	if err := s.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Age,
		&p.Gender,
		&p.Village,
		&p.PhoneNumber,
		&p.EmergencyContact,
		&p.BloodGroup,
		&allergies,
		&chronic,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return patients.Patient{}, err
	}
	if err := fromJSON(allergies, &p.Allergies); err != nil {
		return patients.Patient{}, err
	}
	if err := fromJSON(chronic, &p.ChronicConditions); err != nil {
		return patients.Patient{}, err
	}
	return p, nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
