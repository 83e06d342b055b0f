package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"rural-health-core/internal/domain/prescriptions"
)

type PrescriptionsRepo struct {
	db *sql.DB
}

func NewPrescriptionsRepo(db *sql.DB) *PrescriptionsRepo {
	return &PrescriptionsRepo{db: db}
}

const prescriptionColumns = `
	id, patient_id,
	doctor_name, medicines, extracted_text,
	active, prescribed_by, created_at`

func (r *PrescriptionsRepo) Create(ctx context.Context, p prescriptions.Prescription) error {
	meds := p.Medicines
	if meds == nil {
		meds = []prescriptions.Medicine{}
	}
	raw, err := toJSON(meds)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO prescriptions (`+prescriptionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		p.ID,
		p.PatientID,
		p.DoctorName,
		raw,
		p.ExtractedText,
		p.Active,
		p.PrescribedBy,
		p.CreatedAt,
	)
	return err
}

func (r *PrescriptionsRepo) GetByID(ctx context.Context, id string) (prescriptions.Prescription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return prescriptions.Prescription{}, prescriptions.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+prescriptionColumns+` FROM prescriptions WHERE id = $1`, id)
	p, err := scanPrescription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return prescriptions.Prescription{}, prescriptions.ErrNotFound
	}
	return p, err
}

func (r *PrescriptionsRepo) ListByPatient(ctx context.Context, patientID string) ([]prescriptions.Prescription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prescriptionColumns+`
		FROM prescriptions
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]prescriptions.Prescription, 0)
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PrescriptionsRepo) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE prescriptions SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return prescriptions.ErrNotFound
	}
	return nil
}

func scanPrescription(s rowScanner) (prescriptions.Prescription, error) {
	var p prescriptions.Prescription
	var meds []byte
	if err := s.Scan(
		&p.ID,
		&p.PatientID,
		&p.DoctorName,
		&meds,
		&p.ExtractedText,
		&p.Active,
		&p.PrescribedBy,
		&p.CreatedAt,
	); err != nil {
		return prescriptions.Prescription{}, err
	}
	if err := fromJSON(meds, &p.Medicines); err != nil {
		return prescriptions.Prescription{}, err
	}
	return p, nil
}
