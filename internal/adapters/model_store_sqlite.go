package adapters

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/mattn/go-sqlite3"

	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/types"
)

const modelSchemaSQL = `
CREATE TABLE IF NOT EXISTS models (
	name    TEXT NOT NULL,
	version TEXT NOT NULL DEFAULT '',
	kind    INTEGER NOT NULL DEFAULT 0,
	body    TEXT NOT NULL,
	PRIMARY KEY (name, version)
);
`

// SQLiteModelStore persists models in a SQLite database.
type SQLiteModelStore struct {
	conn *sql.DB
}

// OpenSQLiteModelStore opens (or creates) the database at path.
func OpenSQLiteModelStore(path string) (*SQLiteModelStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("model store path is empty")
	}
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, storeFailure("open model store", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, storeFailure("ping model store", err)
	}
	if _, err := conn.Exec(modelSchemaSQL); err != nil {
		conn.Close()
		return nil, storeFailure("apply model store schema", err)
	}
	return &SQLiteModelStore{conn: conn}, nil
}

func (s *SQLiteModelStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteModelStore) AddModel(ctx context.Context, model types.StoredModel) error {
	if err := validateStoredModel(model); err != nil {
		return err
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return storeFailure("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO models (name, version, kind, body) VALUES (?, ?, ?, ?)`,
		model.Name, model.Version.Value, int(model.Version.Kind), model.Body)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg("model already stored: " + model.Key())
	}
	if err != nil {
		return storeFailure("insert model", err)
	}
	if err := tx.Commit(); err != nil {
		return storeFailure("commit model", err)
	}
	return nil
}

func (s *SQLiteModelStore) ReadModel(ctx context.Context, name string) (types.StoredModel, bool, error) {
	models, err := s.query(ctx, `SELECT name, version, kind, body FROM models WHERE name = ? ORDER BY version LIMIT 2`, name)
	if err != nil {
		return types.StoredModel{}, false, err
	}
	switch len(models) {
	case 0:
		return types.StoredModel{}, false, nil
	case 1:
		return models[0], true, nil
	}
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM models WHERE name = ?`, name).Scan(&count); err != nil {
		return types.StoredModel{}, false, storeFailure("count models", err)
	}
	return types.StoredModel{}, false, ambiguousModel(name, count)
}

func (s *SQLiteModelStore) ReadModelVersion(ctx context.Context, name string, version types.Version) (types.StoredModel, bool, error) {
	models, err := s.query(ctx, `SELECT name, version, kind, body FROM models WHERE name = ? AND version = ?`, name, version.Value)
	if err != nil || len(models) == 0 {
		return types.StoredModel{}, false, err
	}
	return models[0], true, nil
}

func (s *SQLiteModelStore) ListVersions(ctx context.Context, name string) ([]types.StoredModel, error) {
	models, err := s.query(ctx, `SELECT name, version, kind, body FROM models WHERE name = ?`, name)
	if err != nil {
		return nil, err
	}
	sortModels(models)
	return models, nil
}

func (s *SQLiteModelStore) ListModels(ctx context.Context) ([]types.StoredModel, error) {
	models, err := s.query(ctx, `SELECT name, version, kind, body FROM models`)
	if err != nil {
		return nil, err
	}
	sortModels(models)
	return models, nil
}

func (s *SQLiteModelStore) DeleteModel(ctx context.Context, name string, version types.Version) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM models WHERE name = ? AND version = ?`, name, version.Value)
	if err != nil {
		return storeFailure("delete model", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storeFailure("delete model", err)
	}
	if affected == 0 {
		return modelNotFound(types.Capability{Name: name, Version: version})
	}
	return nil
}

func (s *SQLiteModelStore) query(ctx context.Context, query string, args ...any) ([]types.StoredModel, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeFailure("query models", err)
	}
	defer rows.Close()

	var out []types.StoredModel
	for rows.Next() {
		var (
			model types.StoredModel
			kind  int
		)
		if err := rows.Scan(&model.Name, &model.Version.Value, &kind, &model.Body); err != nil {
			return nil, storeFailure("scan model", err)
		}
		model.Version.Kind = types.VersionKind(kind)
		out = append(out, model)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("read models", err)
	}
	return out, nil
}

func storeFailure(action string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to " + action).
		WithCause(err)
}

var _ ports.ModelStorePort = (*SQLiteModelStore)(nil)
