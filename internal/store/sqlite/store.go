package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/store"
)

// queryTimeout bounds every read; the grain view reads synchronously
const queryTimeout = 2 * time.Second

// Store is a durable data store backed by a SQLite file
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// modernc.org/sqlite registers the driver as "sqlite"
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// each connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger.With(zap.String("store", "sqlite"))}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// queryRow runs a single-row read and reports whether a row was scanned.
// Errors other than "no rows" are logged and reported as absent.
func (s *Store) queryRow(op string, query string, args []any, dest ...any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err := s.db.QueryRowContext(ctx, query, args...).Scan(dest...)
	switch {
	case err == nil:
		return true
	case errors.Is(err, sql.ErrNoRows):
		return false
	default:
		s.logger.Warn("Store read failed", zap.String("op", op), zap.Error(err))
		return false
	}
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.db.ExecContext(ctx, query, args...)
}

// OwnedGrain returns the grain if userID owns it
func (s *Store) OwnedGrain(grainID, userID string) (*types.Grain, bool) {
	grain, ok := s.Grain(grainID)
	if !ok || grain.UserID != userID {
		return nil, false
	}
	return grain, true
}

// Grain returns a grain regardless of owner
func (s *Store) Grain(grainID string) (*types.Grain, bool) {
	var grain types.Grain
	var created int64
	ok := s.queryRow("grain",
		`SELECT id, user_id, package_id, app_id, title, created_at_unixms FROM grains WHERE id = ?`,
		[]any{grainID},
		&grain.ID, &grain.UserID, &grain.PackageID, &grain.AppID, &grain.Title, &created)
	if !ok {
		return nil, false
	}
	grain.CreatedAt = time.UnixMilli(created).UTC()
	return &grain, true
}

// EarliestToken returns the oldest grain-scoped token for grainID held by userID
func (s *Store) EarliestToken(grainID, userID string) (*types.APIToken, bool) {
	var token types.APIToken
	var ownerJSON sql.NullString
	var created int64
	ok := s.queryRow("earliest_token",
		`SELECT id, grain_id, user_id, object_id, owner_json, created_at_unixms
		   FROM api_tokens
		  WHERE grain_id = ? AND owner_user_id = ? AND object_id = ''
		  ORDER BY created_at_unixms, id
		  LIMIT 1`,
		[]any{grainID, userID},
		&token.ID, &token.GrainID, &token.UserID, &token.ObjectID, &ownerJSON, &created)
	if !ok {
		return nil, false
	}
	token.CreatedAt = time.UnixMilli(created).UTC()
	if ownerJSON.Valid {
		var owner types.TokenOwner
		if err := sonic.UnmarshalString(ownerJSON.String, &owner); err != nil {
			s.logger.Warn("Corrupt token owner", zap.String("token_id", token.ID), zap.Error(err))
			return nil, false
		}
		token.Owner = &owner
	}
	return &token, true
}

// HasTokenFrom reports whether issuerID issued any token now held by ownerID
func (s *Store) HasTokenFrom(issuerID, ownerID string) bool {
	if ownerID == "" {
		return false
	}
	var one int
	return s.queryRow("has_token_from",
		`SELECT 1 FROM api_tokens WHERE user_id = ? AND owner_user_id = ? LIMIT 1`,
		[]any{issuerID, ownerID}, &one)
}

// TokenInfo returns the cached info for a shared link token
func (s *Store) TokenInfo(token string) (*types.TokenInfo, bool) {
	if token == "" {
		return nil, false
	}
	var raw string
	if !s.queryRow("token_info", `SELECT json FROM token_info WHERE token = ?`, []any{token}, &raw) {
		return nil, false
	}
	var info types.TokenInfo
	if err := sonic.UnmarshalString(raw, &info); err != nil {
		s.logger.Warn("Corrupt token info", zap.Error(err))
		return nil, false
	}
	return &info, true
}

// Package returns an installed package
func (s *Store) Package(packageID string) (*types.Package, bool) {
	var pkg types.Package
	var manifestJSON sql.NullString
	if !s.queryRow("package", `SELECT id, app_id, manifest_json FROM packages WHERE id = ?`,
		[]any{packageID}, &pkg.ID, &pkg.AppID, &manifestJSON) {
		return nil, false
	}
	if manifestJSON.Valid {
		var manifest types.Manifest
		if err := sonic.UnmarshalString(manifestJSON.String, &manifest); err != nil {
			s.logger.Warn("Corrupt manifest", zap.String("package_id", packageID), zap.Error(err))
			return nil, false
		}
		pkg.Manifest = &manifest
	}
	return &pkg, true
}

// Session returns a session record
func (s *Store) Session(sessionID string) (*types.SessionRecord, bool) {
	var session types.SessionRecord
	var viewInfoJSON sql.NullString
	if !s.queryRow("session", `SELECT id, grain_id, host_id, has_loaded, view_info_json FROM sessions WHERE id = ?`,
		[]any{sessionID}, &session.ID, &session.GrainID, &session.HostID, &session.HasLoaded, &viewInfoJSON) {
		return nil, false
	}
	if viewInfoJSON.Valid {
		if err := sonic.UnmarshalString(viewInfoJSON.String, &session.ViewInfo); err != nil {
			s.logger.Warn("Corrupt view info", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return &session, true
}

// GrainSize returns the storage size reported for a session's grain
func (s *Store) GrainSize(sessionID string) (uint64, bool) {
	var size int64
	if !s.queryRow("grain_size", `SELECT size FROM grain_sizes WHERE session_id = ?`, []any{sessionID}, &size) {
		return 0, false
	}
	return uint64(size), true
}

// SetGrainTitle renames a grain
func (s *Store) SetGrainTitle(grainID, title string) error {
	res, err := s.exec(context.Background(), `UPDATE grains SET title = ? WHERE id = ?`, title, grainID)
	return affected(res, err, "grain", grainID)
}

// SetTokenTitle renames the holder's annotation of a token
func (s *Store) SetTokenTitle(tokenID, title string) error {
	res, err := s.exec(context.Background(),
		`UPDATE api_tokens SET owner_json = json_set(owner_json, '$.title', ?) WHERE id = ? AND owner_json IS NOT NULL`,
		title, tokenID)
	return affected(res, err, "token", tokenID)
}

func affected(res sql.Result, err error, kind, recordID string) error {
	if err != nil {
		return fmt.Errorf("update %s %s: %w", kind, recordID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, recordID, store.ErrNotFound)
	}
	return nil
}

// PutGrain inserts or replaces a grain
func (s *Store) PutGrain(grain types.Grain) error {
	_, err := s.exec(context.Background(),
		`INSERT OR REPLACE INTO grains(id, user_id, package_id, app_id, title, created_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		grain.ID, grain.UserID, grain.PackageID, grain.AppID, grain.Title, grain.CreatedAt.UnixMilli())
	return err
}

// PutPackage inserts or replaces a package
func (s *Store) PutPackage(pkg types.Package) error {
	manifestJSON, err := marshalNullable(pkg.Manifest)
	if err != nil {
		return err
	}
	_, err = s.exec(context.Background(),
		`INSERT OR REPLACE INTO packages(id, app_id, manifest_json) VALUES(?, ?, ?)`,
		pkg.ID, pkg.AppID, manifestJSON)
	return err
}

// PutToken inserts or replaces a token
func (s *Store) PutToken(token types.APIToken) error {
	ownerJSON, err := marshalNullable(token.Owner)
	if err != nil {
		return err
	}
	_, err = s.exec(context.Background(),
		`INSERT OR REPLACE INTO api_tokens(id, grain_id, user_id, object_id, owner_user_id, owner_json, created_at_unixms)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		token.ID, token.GrainID, token.UserID, token.ObjectID, token.OwnerUserID(), ownerJSON, token.CreatedAt.UnixMilli())
	return err
}

// PutTokenInfo caches the info of a shared link
func (s *Store) PutTokenInfo(info types.TokenInfo) error {
	raw, err := sonic.MarshalString(info)
	if err != nil {
		return err
	}
	_, err = s.exec(context.Background(), `INSERT OR REPLACE INTO token_info(token, json) VALUES(?, ?)`, info.Token, raw)
	return err
}

// PutSession inserts or replaces a session
func (s *Store) PutSession(session types.SessionRecord) error {
	var viewInfoJSON sql.NullString
	if session.ViewInfo != nil {
		raw, err := sonic.MarshalString(session.ViewInfo)
		if err != nil {
			return err
		}
		viewInfoJSON = sql.NullString{String: raw, Valid: true}
	}
	_, err := s.exec(context.Background(),
		`INSERT OR REPLACE INTO sessions(id, grain_id, host_id, has_loaded, view_info_json) VALUES(?, ?, ?, ?, ?)`,
		session.ID, session.GrainID, session.HostID, session.HasLoaded, viewInfoJSON)
	return err
}

// RemoveSession deletes a session and its size record
func (s *Store) RemoveSession(sessionID string) bool {
	res, err := s.exec(context.Background(), `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		s.logger.Warn("Failed to remove session", zap.String("session_id", sessionID), zap.Error(err))
		return false
	}
	if _, err := s.exec(context.Background(), `DELETE FROM grain_sizes WHERE session_id = ?`, sessionID); err != nil {
		s.logger.Warn("Failed to remove grain size", zap.String("session_id", sessionID), zap.Error(err))
	}
	n, _ := res.RowsAffected()
	return n > 0
}

// SetGrainSize records the storage size of a session's grain
func (s *Store) SetGrainSize(sessionID string, size uint64) error {
	_, err := s.exec(context.Background(),
		`INSERT OR REPLACE INTO grain_sizes(session_id, size) VALUES(?, ?)`, sessionID, int64(size))
	return err
}

func marshalNullable[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	raw, err := sonic.MarshalString(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: raw, Valid: true}, nil
}
