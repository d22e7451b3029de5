package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreSetUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := &PGStore{DB: db}

	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("record:a", `{"id":"a"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Set(context.Background(), "record:a", `{"id":"a"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := &PGStore{DB: db}

	mock.ExpectQuery("SELECT v FROM kv_entries").
		WithArgs("record:missing").
		WillReturnRows(sqlmock.NewRows([]string{"v"}))

	if _, err := store.Get(context.Background(), "record:missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStoreListTranslatesGlob(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := &PGStore{DB: db}

	rows := sqlmock.NewRows([]string{"k", "v"}).
		AddRow("record:a", `{"id":"a"}`).
		AddRow("record:b", `{"id":"b"}`)
	mock.ExpectQuery("SELECT k, v FROM kv_entries WHERE k LIKE").
		WithArgs("record:%").
		WillReturnRows(rows)

	entries, err := store.List(context.Background(), "record:*", true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreFlushDeletesAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := &PGStore{DB: db}

	mock.ExpectExec("DELETE FROM kv_entries").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestGlobToLike(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
		wantErr bool
	}{
		{pattern: "record:*", want: "record:%"},
		{pattern: "record:abc", want: "record:abc"},
		{pattern: `odd_prefix%*`, want: `odd\_prefix\%%`},
		{pattern: "a*b", wantErr: true},
	}
	for _, tt := range tests {
		got, err := globToLike(tt.pattern)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("globToLike(%q): expected error", tt.pattern)
			}
			continue
		}
		if err != nil {
			t.Fatalf("globToLike(%q): %v", tt.pattern, err)
		}
		if got != tt.want {
			t.Fatalf("globToLike(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}
