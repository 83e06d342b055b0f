package postgres

import (
	"context"
	"database/sql"

	"rural-health-core/internal/domain/symptoms"
	"rural-health-core/internal/domain/triage"
)

type SymptomsRepo struct {
	db *sql.DB
}

func NewSymptomsRepo(db *sql.DB) *SymptomsRepo {
	return &SymptomsRepo{db: db}
}

func (r *SymptomsRepo) Create(ctx context.Context, s symptoms.Submission) error {
	raw, err := toJSON(nonNilStrings(s.Symptoms))
	if err != nil {
		return err
	}

	var temp sql.NullFloat64
	if s.TemperatureF != nil {
		temp = sql.NullFloat64{Float64: *s.TemperatureF, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO symptom_submissions (
			id, patient_id, village,
			symptoms, severity, duration,
			temperature_f, additional_info,
			analysis, urgency,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		s.ID,
		s.PatientID,
		s.Village,
		raw,
		string(s.Severity),
		s.Duration,
		temp,
		s.AdditionalInfo,
		s.Analysis,
		string(s.Urgency),
		s.CreatedAt,
	)
	return err
}

func (r *SymptomsRepo) ListByPatient(ctx context.Context, patientID string, limit int) ([]symptoms.Submission, error) {
	if limit <= 0 {
		limit = symptoms.HistoryLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, patient_id, village,
			symptoms, severity, duration,
			temperature_f, additional_info,
			analysis, urgency,
			created_at
		FROM symptom_submissions
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]symptoms.Submission, 0)
	for rows.Next() {
		var s symptoms.Submission
		var raw []byte
		var severity, urgency string
		var temp sql.NullFloat64

		if err := rows.Scan(
			&s.ID,
			&s.PatientID,
			&s.Village,
			&raw,
			&severity,
			&s.Duration,
			&temp,
			&s.AdditionalInfo,
			&s.Analysis,
			&urgency,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := fromJSON(raw, &s.Symptoms); err != nil {
			return nil, err
		}
		s.Severity = triage.Severity(severity)
		s.Urgency = triage.Urgency(urgency)
		if temp.Valid {
			v := temp.Float64
			s.TemperatureF = &v
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
