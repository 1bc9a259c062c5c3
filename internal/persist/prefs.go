package persist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
)

// Prefs is a flat string key/value store for player preferences and small
// bits of saved state.
type Prefs interface {
	Load(ctx context.Context, key string) (value string, ok bool, err error)
	Save(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	DeleteAll(ctx context.Context) error
}

// PrefsRepo stores prefs in the Postgres prefs table.
type PrefsRepo struct {
	db *DB
}

func NewPrefsRepo(db *DB) *PrefsRepo {
	return &PrefsRepo{db: db}
}

func (r *PrefsRepo) Load(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.Pool.QueryRow(ctx, `SELECT value FROM prefs WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load pref %s: %w", key, err)
	}
	return value, true, nil
}

func (r *PrefsRepo) Save(ctx context.Context, key, value string) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO prefs (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("save pref %s: %w", key, err)
	}
	return nil
}

// SaveMany writes a batch of prefs in a single transaction.
func (r *PrefsRepo) SaveMany(ctx context.Context, kv map[string]string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("prefs begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for k, v := range kv {
		if _, err := tx.Exec(ctx,
			`INSERT INTO prefs (key, value, updated_at) VALUES ($1, $2, now())
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			k, v,
		); err != nil {
			return fmt.Errorf("save pref %s: %w", k, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *PrefsRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM prefs WHERE key = $1`, key)
	return err
}

func (r *PrefsRepo) Has(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM prefs WHERE key = $1)`, key).Scan(&ok)
	return ok, err
}

func (r *PrefsRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM prefs`)
	return err
}

// MemoryPrefs keeps prefs in process memory. Safe for concurrent use.
type MemoryPrefs struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryPrefs() *MemoryPrefs {
	return &MemoryPrefs{data: make(map[string]string)}
}

func (m *MemoryPrefs) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryPrefs) Save(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryPrefs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryPrefs) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MemoryPrefs) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.data)
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MemoryPrefs) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
