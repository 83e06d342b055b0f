package memory

import (
	"context"
	"sort"
	"sync"

	"rural-health-core/internal/domain/villagestats"
)

type statKey struct {
	village string
	day     string
}

// villageStatRepo implementa el contrato de versión igual que Postgres:
// Insert falla si existe, Update falla si la versión no coincide.
type villageStatRepo struct {
	mu    sync.RWMutex
	byKey map[statKey]villagestats.DailyStat
}

func NewVillageStatRepo() villagestats.Repository {
	return &villageStatRepo{
		byKey: make(map[statKey]villagestats.DailyStat),
	}
}

func (r *villageStatRepo) Get(ctx context.Context, village, day string) (villagestats.DailyStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byKey[statKey{village, day}]
	if !ok {
		return villagestats.DailyStat{}, villagestats.ErrNotFound
	}
	return cloneStat(s), nil
}

func (r *villageStatRepo) Insert(ctx context.Context, s villagestats.DailyStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := statKey{s.Village, s.Day}
	if _, exists := r.byKey[k]; exists {
		return villagestats.ErrConflict
	}
	s.Version = 1
	r.byKey[k] = cloneStat(s)
	return nil
}

func (r *villageStatRepo) Update(ctx context.Context, s villagestats.DailyStat, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := statKey{s.Village, s.Day}
	cur, ok := r.byKey[k]
	if !ok {
		return villagestats.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return villagestats.ErrConflict
	}
	s.Version = expectedVersion + 1
	r.byKey[k] = cloneStat(s)
	return nil
}

func (r *villageStatRepo) ListRecent(ctx context.Context, village string, limit int) ([]villagestats.DailyStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]villagestats.DailyStat, 0)
	for k, s := range r.byKey {
		if k.village == village {
			out = append(out, cloneStat(s))
		}
	}

	// YYYY-MM-DD ordena bien como string
	sort.Slice(out, func(i, j int) bool {
		return out[i].Day > out[j].Day
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneStat(s villagestats.DailyStat) villagestats.DailyStat {
	s.Symptoms = append([]string(nil), s.Symptoms...)
	return s
}
