package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantOK      bool
		wantVersion int
		wantName    string
	}{
		{"0001_create_transactions.sql", true, 1, "create_transactions"},
		{"0002_create_receipts.sql", true, 2, "create_receipts"},
		{"0010_add_notes_column.sql", true, 10, "add_notes_column"},
		{"001_short_version.sql", false, 0, ""},
		{"0001_missing_extension", false, 0, ""},
		{"0001.sql", false, 0, ""},
		{"create_0001_wrong_order.sql", false, 0, ""},
		{"README.md", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("parseMigrationFilename(%q) ok = %v, want %v", tt.filename, ok, tt.wantOK)
			}
			if version != tt.wantVersion {
				t.Errorf("version = %d, want %d", version, tt.wantVersion)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
		})
	}
}

func TestChecksumSQL(t *testing.T) {
	a := checksumSQL([]byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.transactions` (id STRING)"))
	b := checksumSQL([]byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.transactions` (id STRING)"))
	c := checksumSQL([]byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.receipts` (id STRING)"))

	if a != b {
		t.Errorf("identical content produced different checksums: %s vs %s", a, b)
	}
	if a == c {
		t.Error("different content produced the same checksum")
	}
	if len(a) != 64 {
		t.Errorf("checksum length = %d, want 64 hex characters", len(a))
	}
}

func TestReadMigrationsFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	writeFile("0002_create_receipts.sql", "CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.receipts` (id STRING)")
	writeFile("0001_create_transactions.sql", "CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.transactions` (id STRING)")
	writeFile("notes.txt", "not a migration")

	migrations, err := readMigrations(dir, "my-project", "keuangan")
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("len(migrations) = %d, want 2", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("migrations not sorted by version: got %d, %d", migrations[0].Version, migrations[1].Version)
	}
	want := "CREATE TABLE `my-project.keuangan.transactions` (id STRING)"
	if migrations[0].SQL != want {
		t.Errorf("SQL = %q, want placeholders substituted: %q", migrations[0].SQL, want)
	}
	if migrations[0].Checksum == migrations[1].Checksum {
		t.Error("distinct migrations share a checksum")
	}
}
