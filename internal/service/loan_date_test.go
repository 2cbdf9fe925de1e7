package service

import (
	"testing"
	"time"
)

func TestAddCalendarDaysBoundaries(t *testing.T) {
	cases := []struct {
		from string
		days int
		want string
	}{
		{"2024-01-30", 5, "2024-02-04"},
		{"2023-02-27", 3, "2023-03-02"},
		{"2024-02-27", 3, "2024-03-01"},
		{"2024-12-29", 10, "2025-01-08"},
		{"2024-03-09", 3, "2024-03-12"},
	}
	for _, tc := range cases {
		from, err := ParseCalendarDate(tc.from)
		if err != nil {
			t.Fatalf("parse %s failed: %v", tc.from, err)
		}
		if got := AddCalendarDays(from, tc.days).String(); got != tc.want {
			t.Fatalf("%s + %d want %s got %s", tc.from, tc.days, tc.want, got)
		}
	}
}

func TestDateOfIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	late := time.Date(2024, 3, 31, 23, 59, 0, 0, loc)
	if got := DateOf(late).String(); got != "2024-03-31" {
		t.Fatalf("date should use local calendar day, got %s", got)
	}
}

func TestParseDueParam(t *testing.T) {
	now := time.Date(2024, 8, 28, 10, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"":              "2024-09-04",
		"2024-09-01":    "2024-09-01",
		"1725148800000": "2024-09-01",
		"garbage":       "2024-09-04",
	}
	for raw, want := range cases {
		if got := ParseDueParam(raw, now).String(); got != want {
			t.Fatalf("ParseDueParam(%q) want %s got %s", raw, want, got)
		}
	}
	if long := ParseDueParam("2024-09-05", now).Long(); long != "05 September 2024" {
		t.Fatalf("unexpected long date: %s", long)
	}
}
