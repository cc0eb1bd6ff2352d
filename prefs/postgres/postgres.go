package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	_ "github.com/lib/pq"
	"github.com/prebid/tcf-adgate/config"
	"github.com/prebid/tcf-adgate/errortypes"
	"github.com/prebid/tcf-adgate/logger"
	"github.com/prebid/tcf-adgate/prefs"
)

const (
	schema = `CREATE TABLE IF NOT EXISTS preferences (
	user_id text NOT NULL,
	namespace text NOT NULL,
	key text NOT NULL,
	string_value text,
	int_value integer,
	PRIMARY KEY (user_id, namespace, key)
)`

	selectStringQuery = "SELECT string_value FROM preferences WHERE user_id = $1 AND namespace = $2 AND key = $3"
	selectIntQuery    = "SELECT int_value FROM preferences WHERE user_id = $1 AND namespace = $2 AND key = $3"

	upsertStringQuery = `INSERT INTO preferences (user_id, namespace, key, string_value, int_value) VALUES ($1, $2, $3, $4, NULL)
ON CONFLICT (user_id, namespace, key) DO UPDATE SET string_value = EXCLUDED.string_value, int_value = NULL`
	upsertIntQuery = `INSERT INTO preferences (user_id, namespace, key, string_value, int_value) VALUES ($1, $2, $3, NULL, $4)
ON CONFLICT (user_id, namespace, key) DO UPDATE SET string_value = NULL, int_value = EXCLUDED.int_value`

	deleteQuery = "DELETE FROM preferences WHERE user_id = $1 AND namespace = $2 AND key = $3"
)

// Open connects to postgres with the lib/pq driver and creates the preferences table if needed.
func Open(ctx context.Context, cfg config.PostgresConnection) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return nil, err
	}
	if err := initialize(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initialize fails when the database is unreachable, so the table is never missing once
// a store is handed out.
func initialize(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connecting to preferences database: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating preferences table: %v", err)
	}
	return nil
}

// NewStore returns a Store backed by the preferences table.
func NewStore(db *sql.DB) prefs.Store {
	return &store{db: db}
}

type store struct {
	db *sql.DB
}

func (s *store) Preferences(user, namespace string) prefs.Preferences {
	return &preferences{
		db:        s.db,
		user:      user,
		namespace: namespace,
	}
}

type preferences struct {
	db        *sql.DB
	user      string
	namespace string
}

func (p *preferences) GetString(ctx context.Context, key, defaultValue string) string {
	var value sql.NullString
	if !p.scan(ctx, selectStringQuery, key, &value) || !value.Valid {
		return defaultValue
	}
	return value.String
}

func (p *preferences) GetInt(ctx context.Context, key string, defaultValue int) int {
	var value sql.NullInt64
	if !p.scan(ctx, selectIntQuery, key, &value) || !value.Valid {
		return defaultValue
	}
	return int(value.Int64)
}

func (p *preferences) scan(ctx context.Context, query, key string, dest any) bool {
	err := p.db.QueryRowContext(ctx, query, p.user, p.namespace, key).Scan(dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Errorf("postgres preferences: reading %s for %s/%s: %v", key, p.user, p.namespace, err)
	}
	return false
}

func (p *preferences) SetString(ctx context.Context, key, value string) error {
	return p.exec(ctx, "writing", upsertStringQuery, key, value)
}

// SetStrings upserts all values in one transaction.
func (p *preferences) SetStrings(ctx context.Context, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return &errortypes.StoreFailure{Message: fmt.Sprintf("postgres preferences: starting transaction: %v", err)}
	}
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, upsertStringQuery, p.user, p.namespace, key, values[key]); err != nil {
			tx.Rollback()
			return &errortypes.StoreFailure{Message: fmt.Sprintf("postgres preferences: writing %s: %v", key, err)}
		}
	}
	if err := tx.Commit(); err != nil {
		return &errortypes.StoreFailure{Message: fmt.Sprintf("postgres preferences: committing: %v", err)}
	}
	return nil
}

func (p *preferences) SetInt(ctx context.Context, key string, value int) error {
	return p.exec(ctx, "writing", upsertIntQuery, key, value)
}

func (p *preferences) Remove(ctx context.Context, key string) error {
	return p.exec(ctx, "removing", deleteQuery, key)
}

func (p *preferences) exec(ctx context.Context, action, query, key string, value ...any) error {
	args := append([]any{p.user, p.namespace, key}, value...)
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return &errortypes.StoreFailure{Message: fmt.Sprintf("postgres preferences: %s %s: %v", action, key, err)}
	}
	return nil
}
