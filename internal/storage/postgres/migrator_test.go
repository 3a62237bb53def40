package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrationsFromFS_SortsByVersion(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0002_more.up.sql":   {Data: []byte("CREATE TABLE test_b (id INT);")},
		"sql/migrations/0002_more.down.sql": {Data: []byte("DROP TABLE IF EXISTS test_b;")},
		"sql/migrations/0001_init.up.sql":   {Data: []byte("CREATE TABLE test_a (id INT);")},
		"sql/migrations/0001_init.down.sql": {Data: []byte("DROP TABLE IF EXISTS test_a;")},
	}

	migrations, err := loadMigrationsFromFS(fsys)
	if err != nil {
		t.Fatalf("loadMigrationsFromFS failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].label() != "1_init" || migrations[1].label() != "2_more" {
		t.Fatalf("unexpected order: %s, %s", migrations[0].label(), migrations[1].label())
	}
	if migrations[0].body(migrationDown) != "DROP TABLE IF EXISTS test_a;" {
		t.Fatalf("unexpected down body: %q", migrations[0].body(migrationDown))
	}
}

func TestLoadMigrationsFromFS_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		fsys    fstest.MapFS
		wantErr string
	}{
		"missing down": {
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql": {Data: []byte("CREATE TABLE a (id INT);")},
			},
			wantErr: "both up and down",
		},
		"invalid name": {
			fsys: fstest.MapFS{
				"sql/migrations/not_a_migration.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "invalid migration file name",
		},
		"empty body": {
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql":   {Data: []byte("   \n")},
				"sql/migrations/0001_init.down.sql": {Data: []byte("DROP TABLE IF EXISTS a;")},
			},
			wantErr: "empty",
		},
		"name mismatch": {
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql":    {Data: []byte("CREATE TABLE a (id INT);")},
				"sql/migrations/0001_other.down.sql": {Data: []byte("DROP TABLE IF EXISTS a;")},
			},
			wantErr: "name mismatch",
		},
		"no files": {
			fsys:    fstest.MapFS{},
			wantErr: "no migration files",
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := loadMigrationsFromFS(tc.fsys)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEmbeddedMigrations_Load(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrationsFromFS(embeddedMigrations)
	if err != nil {
		t.Fatalf("embedded migrations: %v", err)
	}
	if len(migrations) != embeddedMigrationCount {
		t.Fatalf("expected %d embedded migrations, got %d", embeddedMigrationCount, len(migrations))
	}
}

func TestPendingMigrations(t *testing.T) {
	t.Parallel()

	all := []migration{{Version: 1}, {Version: 2}, {Version: 3}}
	pending := pendingMigrations(all, []int64{1, 3})
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Fatalf("unexpected pending: %+v", pending)
	}
}
