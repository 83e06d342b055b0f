package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rural-health-core/internal/domain/villagestats"

	"gorm.io/datatypes"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// villageDailyStatRow es el modelo gorm de village_daily_stats.
type villageDailyStatRow struct {
	Village        string                      `gorm:"primaryKey;size:160"`
	Day            string                      `gorm:"primaryKey;size:10"`
	TotalCases     int                         `gorm:"not null"`
	EmergencyCases int                         `gorm:"not null"`
	Symptoms       datatypes.JSONSlice[string] `gorm:"type:jsonb;not null"`
	Version        int64                       `gorm:"not null"`
	UpdatedAt      time.Time
}

func (villageDailyStatRow) TableName() string { return "village_daily_stats" }

// VillageStatsRepo usa gorm sobre el mismo *sql.DB del resto de repos.
// TranslateError convierte la violación de PK en gorm.ErrDuplicatedKey.
type VillageStatsRepo struct {
	db *gorm.DB
}

func NewVillageStatsRepo(sqlDB *sql.DB) (*VillageStatsRepo, error) {
	gdb, err := gorm.Open(gormpg.New(gormpg.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return &VillageStatsRepo{db: gdb}, nil
}

func (r *VillageStatsRepo) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&villageDailyStatRow{})
}

func (r *VillageStatsRepo) Get(ctx context.Context, village, day string) (villagestats.DailyStat, error) {
	var row villageDailyStatRow
	err := r.db.WithContext(ctx).
		Where("village = ? AND day = ?", village, day).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return villagestats.DailyStat{}, villagestats.ErrNotFound
	}
	if err != nil {
		return villagestats.DailyStat{}, err
	}
	return row.toDomain(), nil
}

func (r *VillageStatsRepo) Insert(ctx context.Context, s villagestats.DailyStat) error {
	row := fromDomain(s)
	row.Version = 1

	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return villagestats.ErrConflict
	}
	return err
}

// Update aplica solo si la versión no cambió desde la lectura.
func (r *VillageStatsRepo) Update(ctx context.Context, s villagestats.DailyStat, expectedVersion int64) error {
	res := r.db.WithContext(ctx).
		Model(&villageDailyStatRow{}).
		Where("village = ? AND day = ? AND version = ?", s.Village, s.Day, expectedVersion).
		Updates(map[string]any{
			"total_cases":     s.TotalCases,
			"emergency_cases": s.EmergencyCases,
			"symptoms":        datatypes.JSONSlice[string](nonNilStrings(s.Symptoms)),
			"version":         expectedVersion + 1,
			"updated_at":      s.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return villagestats.ErrConflict
	}
	return nil
}

func (r *VillageStatsRepo) ListRecent(ctx context.Context, village string, limit int) ([]villagestats.DailyStat, error) {
	var rows []villageDailyStatRow
	q := r.db.WithContext(ctx).
		Where("village = ?", village).
		Order("day DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]villagestats.DailyStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func fromDomain(s villagestats.DailyStat) villageDailyStatRow {
	return villageDailyStatRow{
		Village:        s.Village,
		Day:            s.Day,
		TotalCases:     s.TotalCases,
		EmergencyCases: s.EmergencyCases,
		Symptoms:       datatypes.JSONSlice[string](nonNilStrings(s.Symptoms)),
		Version:        s.Version,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (row villageDailyStatRow) toDomain() villagestats.DailyStat {
	return villagestats.DailyStat{
		Village:        row.Village,
		Day:            row.Day,
		TotalCases:     row.TotalCases,
		EmergencyCases: row.EmergencyCases,
		Symptoms:       append([]string{}, row.Symptoms...),
		Version:        row.Version,
		UpdatedAt:      row.UpdatedAt,
	}
}
