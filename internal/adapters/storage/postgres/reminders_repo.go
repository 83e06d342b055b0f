package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"rural-health-core/internal/domain/reminders"
)

type RemindersRepo struct {
	db *sql.DB
}

func NewRemindersRepo(db *sql.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

const reminderColumns = `
	id, patient_id, prescription_id,
	kind, title, description,
	scheduled_at, completed, completed_at,
	medicine_key, repeat_interval,
	created_at`

// execer lo cumplen *sql.DB y *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *RemindersRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	return insertReminder(ctx, r.db, rem)
}

func (r *RemindersRepo) CreateBatch(ctx context.Context, rs []reminders.Reminder) error {
	if len(rs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, rem := range rs {
		if err := insertReminder(ctx, tx, rem); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertReminder(ctx context.Context, db execer, rem reminders.Reminder) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		rem.ID,
		rem.PatientID,
		rem.PrescriptionID,
		string(rem.Kind),
		rem.Title,
		rem.Description,
		rem.ScheduledAt,
		rem.Completed,
		toNullTime(rem.CompletedAt),
		rem.MedicineKey,
		rem.RepeatInterval,
		rem.CreatedAt,
	)
	return err
}

func (r *RemindersRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reminders.Reminder{}, reminders.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = $1`, id)
	rem, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return reminders.Reminder{}, reminders.ErrNotFound
	}
	return rem, err
}

// CompleteAndSpawn corre el UPDATE condicional y el INSERT del sucesor en una transacción.
// Solo una de varias llamadas concurrentes afecta la fila; si el INSERT falla se revierte todo.
func (r *RemindersRepo) CompleteAndSpawn(ctx context.Context, id string, at time.Time, next *reminders.Reminder) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE reminders
		SET completed = TRUE, completed_at = $2
		WHERE id = $1 AND completed = FALSE
	`, id, at)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		// O no existe o ya estaba completado.
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM reminders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			return false, reminders.ErrNotFound
		}
		return false, nil
	}

	if next != nil {
		if err := insertReminder(ctx, tx, *next); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RemindersRepo) ListByPatient(ctx context.Context, patientID string, filter reminders.ListFilter) ([]reminders.Reminder, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE patient_id = $1
		ORDER BY scheduled_at DESC
		LIMIT $2
	`, patientID, limit)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

func (r *RemindersRepo) ListPendingBetween(ctx context.Context, patientID string, from, to time.Time) ([]reminders.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE completed = FALSE AND scheduled_at >= $1 AND scheduled_at <= $2`
	args := []any{from, to}
	if patientID != "" {
		query += ` AND patient_id = $3`
		args = append(args, patientID)
	}
	query += ` ORDER BY scheduled_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

func collectReminders(rows *sql.Rows) ([]reminders.Reminder, error) {
	defer rows.Close()

	out := make([]reminders.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func scanReminder(s rowScanner) (reminders.Reminder, error) {
	var rem reminders.Reminder
	var kind string
	var completedAt sql.NullTime
	if err := s.Scan(
		&rem.ID,
		&rem.PatientID,
		&rem.PrescriptionID,
		&kind,
		&rem.Title,
		&rem.Description,
		&rem.ScheduledAt,
		&rem.Completed,
		&completedAt,
		&rem.MedicineKey,
		&rem.RepeatInterval,
		&rem.CreatedAt,
	); err != nil {
		return reminders.Reminder{}, err
	}
	rem.Kind = reminders.Kind(kind)
	if completedAt.Valid {
		t := completedAt.Time
		rem.CompletedAt = &t
	}
	return rem, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
