package main

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setToolsEnv(t *testing.T, dbPath string) {
	t.Helper()
	t.Setenv("APP_ENV", "dev")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", "")
	t.Setenv("SQL_LOG", "false")
	t.Setenv("SQLITE_PATH", dbPath)
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func countRows(t *testing.T, dbPath, table string) int {
	t.Helper()
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "migrate with extra args", args: []string{"migrate", "x"}},
		{name: "seed missing files", args: []string{"seed", "measurements.csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args); !errors.Is(err, errUsage) {
				t.Fatalf("run(%v) = %v, want usage error", tt.args, err)
			}
		})
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run([]string{"drop"})
	if err == nil || !strings.Contains(err.Error(), "unknown command: drop") {
		t.Fatalf("run error = %v, want unknown command", err)
	}
}

func TestRun_Migrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "hawaii.db")
	setToolsEnv(t, dbPath)

	if err := run([]string{"migrate"}); err != nil {
		t.Fatalf("run migrate: %v", err)
	}
	if got := countRows(t, dbPath, "measurement"); got != 0 {
		t.Fatalf("measurement rows = %d, want 0", got)
	}
}

func TestRun_Seed(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "hawaii.db")
	setToolsEnv(t, dbPath)

	measurements := writeFile(t, dir, "measurements.csv", "station,date,prcp,tobs\nUSC1,2017-08-20,0.5,80\nUSC1,2016-08-20,,70\n")
	stations := writeFile(t, dir, "stations.csv", "station,name,latitude,longitude,elevation\nUSC1,WAIKIKI,21.27,-157.81,3\n")

	if err := run([]string{"seed", measurements, stations}); err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if got := countRows(t, dbPath, "measurement"); got != 2 {
		t.Errorf("measurement rows = %d, want 2", got)
	}
	if got := countRows(t, dbPath, "station"); got != 1 {
		t.Errorf("station rows = %d, want 1", got)
	}
}

func TestRun_SeedMissingFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	setToolsEnv(t, filepath.Join(dir, "hawaii.db"))

	err := run([]string{"seed", filepath.Join(dir, "nope.csv"), filepath.Join(dir, "nope2.csv")})
	if err == nil || !strings.HasPrefix(err.Error(), "seed:") {
		t.Fatalf("run error = %v, want seed error", err)
	}
}
