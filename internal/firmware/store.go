package firmware

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/chatter/remap/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a firmware or its content does not exist.
var ErrNotFound = errors.New("firmware not found")

// StoreError wraps a failed store operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("firmware store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store is the firmware storage service.
type Store interface {
	// List returns the firmwares of a keyboard definition in upload order.
	List(ctx context.Context, definitionID string) ([]Firmware, error)
	// Fetch opens the content stored under filename. Callers close it.
	Fetch(ctx context.Context, filename string) (io.ReadCloser, error)
	// Upload stores the file's content and records it.
	Upload(ctx context.Context, definitionID string, upload Upload) (Firmware, error)
	// Delete removes the record and its content.
	Delete(ctx context.Context, fw Firmware) error
}

// SQLStore keeps firmware records in sqlite and content in a blob directory.
type SQLStore struct {
	db      *sqlx.DB
	blobDir string
	log     *logger.Logger
	now     func() time.Time
}

// Option configures an SQLStore.
type Option func(*SQLStore)

// WithClock overrides the upload timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *SQLStore) {
		s.now = now
	}
}

// OpenSQLStore opens (creating if needed) the database at dbPath, applies
// migrations and stores content under blobDir.
func OpenSQLStore(dbPath, blobDir string, log *logger.Logger, opts ...Option) (*SQLStore, error) {
	for _, dir := range []string{filepath.Dir(dbPath), blobDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &StoreError{Op: "open", Err: err}
		}
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, &StoreError{Op: "migrate", Err: err}
	}

	db, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StoreError{Op: "open", Err: err}
	}

	s := &SQLStore{
		db:      db,
		blobDir: blobDir,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	log.Debug("opened firmware store", "db", dbPath, "blobs", blobDir)

	return s, nil
}

func runMigrations(dbPath string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+dbPath)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

const selectFirmware = `SELECT id, definition_id, name, description, created_at, hash, filename, size FROM firmwares`

// List implements Store.
func (s *SQLStore) List(ctx context.Context, definitionID string) ([]Firmware, error) {
	var list []Firmware
	err := s.db.SelectContext(ctx, &list, selectFirmware+` WHERE definition_id = ? ORDER BY rowid`, definitionID)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return list, nil
}

// Get returns the firmware whose ID is id, or the only one whose ID starts
// with id.
func (s *SQLStore) Get(ctx context.Context, id string) (Firmware, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Firmware{}, &StoreError{Op: "get", Err: ErrNotFound}
	}

	var fw Firmware
	err := s.db.GetContext(ctx, &fw, selectFirmware+` WHERE id = ?`, id)
	if err == nil {
		return fw, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Firmware{}, &StoreError{Op: "get", Err: err}
	}

	var list []Firmware
	if err := s.db.SelectContext(ctx, &list, selectFirmware+` WHERE substr(id, 1, length(?)) = ? LIMIT 2`, id, id); err != nil {
		return Firmware{}, &StoreError{Op: "get", Err: err}
	}
	switch len(list) {
	case 0:
		return Firmware{}, &StoreError{Op: "get", Err: fmt.Errorf("%w: %s", ErrNotFound, id)}
	case 1:
		return list[0], nil
	default:
		return Firmware{}, &StoreError{Op: "get", Err: fmt.Errorf("ambiguous firmware id %q", id)}
	}
}

// Fetch implements Store.
func (s *SQLStore) Fetch(ctx context.Context, filename string) (io.ReadCloser, error) {
	p, err := s.blobPath(filename)
	if err != nil {
		return nil, &StoreError{Op: "fetch", Err: err}
	}

	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &StoreError{Op: "fetch", Err: fmt.Errorf("%w: %s", ErrNotFound, filename)}
	}
	if err != nil {
		return nil, &StoreError{Op: "fetch", Err: err}
	}
	return f, nil
}

// Upload implements Store. The content hash is the hex SHA-256 of the file.
func (s *SQLStore) Upload(ctx context.Context, definitionID string, upload Upload) (Firmware, error) {
	src, err := os.Open(upload.File.Path)
	if err != nil {
		return Firmware{}, &StoreError{Op: "upload", Err: err}
	}
	defer src.Close()

	id := uuid.NewString()
	filename := path.Join("firmwares", definitionID, id+"-"+filepath.Base(upload.File.Name))

	dst, err := s.blobPath(filename)
	if err != nil {
		return Firmware{}, &StoreError{Op: "upload", Err: err}
	}
	hash, size, err := writeBlob(dst, src)
	if err != nil {
		return Firmware{}, &StoreError{Op: "upload", Err: err}
	}

	fw := Firmware{
		ID:           id,
		DefinitionID: definitionID,
		Name:         upload.Name,
		Description:  upload.Description,
		CreatedAt:    s.now().UTC(),
		Hash:         hash,
		Filename:     filename,
		Size:         size,
	}

	_, err = s.db.NamedExecContext(ctx, `INSERT INTO firmwares
		(id, definition_id, name, description, created_at, hash, filename, size)
		VALUES (:id, :definition_id, :name, :description, :created_at, :hash, :filename, :size)`, fw)
	if err != nil {
		os.Remove(dst)
		return Firmware{}, &StoreError{Op: "upload", Err: err}
	}

	s.log.Info("firmware uploaded", "id", id, "definition", definitionID, "size", size, "hash", hash)

	return fw, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, fw Firmware) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM firmwares WHERE id = ?`, fw.ID)
	if err != nil {
		return &StoreError{Op: "delete", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &StoreError{Op: "delete", Err: fmt.Errorf("%w: %s", ErrNotFound, fw.ID)}
	}

	if p, err := s.blobPath(fw.Filename); err == nil {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("failed to remove firmware blob", "path", p, "err", err)
		}
	}

	s.log.Info("firmware deleted", "id", fw.ID)

	return nil
}

// blobPath maps a stored filename into the blob directory, rejecting names
// that would escape it.
func (s *SQLStore) blobPath(filename string) (string, error) {
	local := filepath.FromSlash(filename)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("invalid firmware filename %q", filename)
	}
	return filepath.Join(s.blobDir, local), nil
}

func writeBlob(dst string, src io.Reader) (hash string, size int64, err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", 0, err
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	size, err = io.Copy(tmp, io.TeeReader(src, h))
	if err != nil {
		tmp.Close()
		return "", 0, err
	}
	if err := tmp.Close(); err != nil {
		return "", 0, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", 0, err
	}

	return hex.EncodeToString(h.Sum(nil)), size, nil
}

var _ Store = (*SQLStore)(nil)
