package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
	dispatch "github.com/goliatone/go-service-dispatch"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	defaultSourceLabel = "go-service-dispatch"
	migrationsDir      = "data/sql/migrations"
)

// DialectFS is one dialect's migration tree.
type DialectFS struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []DialectFS
}

type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithSourceLabel(label string) Option {
	return func(r *Registration) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		if next := normalizeDialects(targets); len(next) > 0 {
			r.ValidationTargets = next
		}
	}
}

// Filesystems returns the postgres tree at the migrations root and the sqlite
// tree under its sqlite directory. Each must hold at least one *.up.sql file.
func Filesystems(sources ...fs.FS) ([]DialectFS, error) {
	root := dispatch.GetMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}
	base, err := fs.Sub(root, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", migrationsDir, err)
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	entries := []DialectFS{
		{Dialect: DialectPostgres, Path: migrationsDir, FS: base},
		{Dialect: DialectSQLite, Path: migrationsDir + "/sqlite", FS: sqliteFS},
	}
	for _, entry := range entries {
		matches, err := fs.Glob(entry.FS, "*.up.sql")
		if err != nil {
			return nil, fmt.Errorf("migrations: glob %s: %w", entry.Path, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", entry.Dialect, entry.Path)
		}
	}
	return entries, nil
}

// Register hands every filesystem whose dialect is a validation target to
// registerFn.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       defaultSourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}
	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}
	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems
	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}

	for _, entry := range reg.Filesystems {
		if !slices.Contains(reg.ValidationTargets, entry.Dialect) {
			continue
		}
		if err := registerFn(ctx, entry.Dialect, reg.SourceLabel, entry.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", entry.Dialect, entry.Path, err)
		}
	}
	return reg, nil
}

// Apply registers the migrations for one dialect on client and runs them.
func Apply(ctx context.Context, client *persistence.Client, dialect string) error {
	if client == nil {
		return fmt.Errorf("migrations: persistence client is required")
	}
	targets := normalizeDialects([]string{dialect})
	if len(targets) == 0 {
		return fmt.Errorf("migrations: dialect is required")
	}
	if _, err := Register(ctx, func(_ context.Context, _ string, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	}, WithValidationTargets(targets...)); err != nil {
		return err
	}
	if err := client.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations: migrate %s: %w", targets[0], err)
	}
	return nil
}

func normalizeDialects(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		dialect := strings.TrimSpace(strings.ToLower(value))
		switch dialect {
		case "":
			continue
		case "sqlite3":
			dialect = DialectSQLite
		case "postgresql", "pg":
			dialect = DialectPostgres
		}
		if !slices.Contains(out, dialect) {
			out = append(out, dialect)
		}
	}
	return out
}
