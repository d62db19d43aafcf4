package utils

import (
	"testing"
	"time"
)

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2025, 7, 31},
		{2025, 2, 28},
		{2024, 2, 29},
		{2025, 4, 30},
		{2025, 12, 31},
	}
	for _, c := range cases {
		if got := DaysInMonth(c.year, c.month); got != c.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", c.year, c.month, got, c.want)
		}
	}
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2025, 12)
	if !start.Equal(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}

func TestBeginningOfDay(t *testing.T) {
	in := time.Date(2025, time.July, 5, 17, 42, 3, 99, time.FixedZone("PKT", 5*3600))
	got := BeginningOfDay(in)
	if !got.Equal(time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("BeginningOfDay = %v", got)
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	if err := ValidatePhoneNumber("+923001234567", "PK"); err != nil {
		t.Errorf("valid number rejected: %v", err)
	}
	if err := ValidatePhoneNumber("12345", "PK"); err == nil {
		t.Error("invalid number accepted")
	}
}
