package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"trackrate/internal/models"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer Close(conn)

	if err := Migrate(conn); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	for _, table := range []any{
		&models.User{}, &models.Track{}, &models.Review{},
		&models.Comment{}, &models.Like{}, &models.Dislike{},
	} {
		if !conn.Migrator().HasTable(table) {
			t.Errorf("expected table for %T", table)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := Ping(ctx, conn); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestTrackArtistsRoundTrip(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer Close(conn)
	if err := Migrate(conn); err != nil {
		t.Fatal(err)
	}

	in := models.Track{ID: "t1", Name: "Song", Artists: models.StringList{"A", "B"}, CachedAt: time.Now()}
	if err := conn.Create(&in).Error; err != nil {
		t.Fatal(err)
	}

	var out models.Track
	if err := conn.First(&out, "id = ?", "t1").Error; err != nil {
		t.Fatal(err)
	}
	if len(out.Artists) != 2 || out.Artists[0] != "A" || out.Artists[1] != "B" {
		t.Errorf("Artists = %v, want [A B]", out.Artists)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "dsn"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestQueryLoggingGoesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer Close(conn)
	if err := Migrate(conn); err != nil {
		t.Fatal(err)
	}
	buf.Reset()

	var u models.User
	if err := conn.First(&u, "id = ?", "missing").Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
	if buf.Len() != 0 {
		t.Errorf("missing row was logged: %s", buf.String())
	}

	if err := conn.Exec("SELECT * FROM no_such_table").Error; err == nil {
		t.Fatal("expected an error from an unknown table")
	}
	out := buf.String()
	if !strings.Contains(out, `"component":"gorm"`) || !strings.Contains(out, "no_such_table") {
		t.Errorf("query error not logged through zerolog: %s", out)
	}
}
