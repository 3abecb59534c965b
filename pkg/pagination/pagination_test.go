package pagination

import (
	"encoding/base64"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCursorRoundTripIsURLSafe(t *testing.T) {
	in := Cursor{
		CreatedAt: time.Date(2024, 6, 1, 9, 30, 0, 123456789, time.FixedZone("PDT", -7*3600)),
		ID:        uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e"),
	}
	token := EncodeCursor(in)
	if url.QueryEscape(token) != token {
		t.Fatalf("cursor %q needs escaping", token)
	}

	out, err := ParseCursor(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestParseCursorEdgeCases(t *testing.T) {
	if c, err := ParseCursor("  "); err != nil || c != nil {
		t.Fatalf("expected nil cursor for blank input, got %+v %v", c, err)
	}
	for _, bad := range []string{"%%%", "bm8tc2VwYXJhdG9y", rawCursor("yesterday|" + uuid.NewString()), rawCursor("2024-06-01T00:00:00Z|nope")} {
		if _, err := ParseCursor(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{-1: DefaultLimit, 0: DefaultLimit, 10: 10, MaxLimit + 1: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("LimitWithBuffer(10) = %d", got)
	}
}

func rawCursor(payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

func TestTrim(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]Cursor, 4)
	for i := range rows {
		rows[i] = Cursor{CreatedAt: base.Add(-time.Duration(i) * time.Hour), ID: uuid.New()}
	}
	identity := func(c Cursor) Cursor { return c }

	page, next := Trim(rows, 3, identity)
	if len(page) != 3 || next == nil {
		t.Fatalf("expected 3 rows and a cursor, got %d rows, cursor %v", len(page), next)
	}
	if next.ID != rows[2].ID {
		t.Fatalf("cursor should point at the last kept row")
	}

	page, next = Trim(rows[:3], 3, identity)
	if len(page) != 3 || next != nil {
		t.Fatalf("final page should have no cursor")
	}
}
