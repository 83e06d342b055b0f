package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"rural-health-core/internal/domain/healthrecords"
)

type HealthRecordsRepo struct {
	db *sql.DB
}

func NewHealthRecordsRepo(db *sql.DB) *HealthRecordsRepo {
	return &HealthRecordsRepo{db: db}
}

func (r *HealthRecordsRepo) Create(ctx context.Context, rec healthrecords.Record) error {
	data := rec.Data
	if data == nil {
		data = map[string]any{}
	}
	raw, err := toJSON(data)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO health_records (
			id, patient_id,
			type, occurred_at, recorded_at,
			title, description, data,
			recorded_by, source
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		rec.ID,
		rec.PatientID,
		string(rec.Type),
		rec.OccurredAt,
		rec.RecordedAt,
		rec.Title,
		rec.Description,
		raw,
		rec.RecordedBy,
		string(rec.Source),
	)
	return err
}

func (r *HealthRecordsRepo) ListByPatient(ctx context.Context, patientID string, filter healthrecords.ListFilter) ([]healthrecords.Record, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, patient_id,
			type, occurred_at, recorded_at,
			title, description, data,
			recorded_by, source
		FROM health_records
		WHERE patient_id = $1
	`)

	args := []any{patientID}
	argN := 2

	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(t))
			argN++
		}
		sb.WriteString(" AND type IN (" + strings.Join(placeholders, ",") + ")")
	}

	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	// q: búsqueda simple en title + description
	if q := strings.TrimSpace(filter.Query); q != "" {
		sb.WriteString(fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argN, argN))
		args = append(args, "%"+q+"%")
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = healthrecords.DefaultListLimit
	}
	if limit > healthrecords.MaxListLimit {
		limit = healthrecords.MaxListLimit
	}

	sb.WriteString(" ORDER BY occurred_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]healthrecords.Record, 0)
	for rows.Next() {
		var rec healthrecords.Record
		var typ, source string
		var raw []byte

		if err := rows.Scan(
			&rec.ID,
			&rec.PatientID,
			&typ,
			&rec.OccurredAt,
			&rec.RecordedAt,
			&rec.Title,
			&rec.Description,
			&raw,
			&rec.RecordedBy,
			&source,
		); err != nil {
			return nil, err
		}
		if err := fromJSON(raw, &rec.Data); err != nil {
			return nil, err
		}

		rec.Type = healthrecords.RecordType(typ)
		rec.Source = healthrecords.Source(source)
		out = append(out, rec)
	}

	return out, rows.Err()
}
