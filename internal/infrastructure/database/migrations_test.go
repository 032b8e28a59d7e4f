package database

import (
	"context"
	"embed"
	"testing"
	"testing/fstest"
)

//go:embed testdata/*.sql
var testMigrationsFS embed.FS

// useMigrations swaps the package-level migration source for the test.
func useMigrations(t *testing.T, fsys embed.FS, dir string) {
	t.Helper()
	origFS, origDir := MigrationsFS, MigrationsDir
	t.Cleanup(func() {
		MigrationsFS, MigrationsDir = origFS, origDir
	})
	MigrationsFS, MigrationsDir = fsys, dir
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n)
	if err != nil {
		t.Fatalf("sqlite_master query error = %v", err)
	}
	return n == 1
}

func TestMigrate(t *testing.T) {
	useMigrations(t, testMigrationsFS, "testdata")
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "widgets") {
		t.Fatal("widgets table not created")
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO widgets (name, colour) VALUES ('a', 'red')"); err != nil {
		t.Errorf("second migration not applied: %v", err)
	}

	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("applied=%d pending=%d, want 2/0", len(applied), len(pending))
	}
	if applied[0].AppliedAt.IsZero() {
		t.Error("AppliedAt not recorded")
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrateDown(t *testing.T) {
	useMigrations(t, testMigrationsFS, "testdata")
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// The latest migration has no down file.
	if err := db.MigrateDown(ctx); err == nil {
		t.Fatal("MigrateDown() expected error for migration without down SQL")
	}

	if _, err := db.ExecContext(ctx,
		"DELETE FROM schema_migrations WHERE version = '20260102_000000'"); err != nil {
		t.Fatalf("DELETE error = %v", err)
	}
	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "widgets") {
		t.Error("widgets table should have been dropped")
	}

	applied, _, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("applied = %d after rollback, want 0", len(applied))
	}
}

func TestMigrate_NoSource(t *testing.T) {
	origFS := MigrationsFS
	t.Cleanup(func() { MigrationsFS = origFS })
	MigrationsFS = nil

	db := openTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() with no migrations error = %v", err)
	}
}

func TestLoadMigrations_OrphanDownIgnored(t *testing.T) {
	origFS, origDir := MigrationsFS, MigrationsDir
	t.Cleanup(func() { MigrationsFS, MigrationsDir = origFS, origDir })

	MigrationsFS = fstest.MapFS{
		"20260301_000000_b.up.sql":   {Data: []byte("SELECT 2;")},
		"20260201_000000_a.up.sql":   {Data: []byte("SELECT 1;")},
		"20260201_000000_a.down.sql": {Data: []byte("SELECT 0;")},
		"20260401_000000_c.down.sql": {Data: []byte("SELECT 3;")},
		"README.md":                  {Data: []byte("ignored")},
	}
	MigrationsDir = "."

	got, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Version != "20260201_000000" || got[0].Name != "a" || got[0].DownSQL == "" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Version != "20260301_000000" || got[1].DownSQL != "" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantName    string
		wantUp      bool
		wantOK      bool
	}{
		{"20260118_120000_create_accounts.up.sql", "20260118_120000", "create_accounts", true, true},
		{"20260118_120000_create_accounts.down.sql", "20260118_120000", "create_accounts", false, true},
		{"20260118_120000.up.sql", "20260118_120000", "20260118_120000", true, true},
		{"readme.txt", "", "", false, false},
		{"20260118_120000_create_accounts.sql", "", "", false, false},
		{"invalid.up.sql", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, up, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion || name != tt.wantName || up != tt.wantUp {
				t.Errorf("got (%q, %q, %v), want (%q, %q, %v)",
					version, name, up, tt.wantVersion, tt.wantName, tt.wantUp)
			}
		})
	}
}
