package event

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantYear  int
		wantMonth time.Month
		wantDay   int
		wantZero  bool
	}{
		{
			name:      "German dotted date",
			text:      "24.08.2025",
			wantYear:  2025,
			wantMonth: time.August,
			wantDay:   24,
		},
		{
			name:      "German dotted date without leading zeros",
			text:      "4.8.2025",
			wantYear:  2025,
			wantMonth: time.August,
			wantDay:   4,
		},
		{
			name:      "ISO date",
			text:      "2025-10-03",
			wantYear:  2025,
			wantMonth: time.October,
			wantDay:   3,
		},
		{
			name:      "ISO date time as written by spreadsheet tools",
			text:      "2025-10-03 00:00:00",
			wantYear:  2025,
			wantMonth: time.October,
			wantDay:   3,
		},
		{
			name:      "Serial day number",
			text:      "45893",
			wantYear:  2025,
			wantMonth: time.August,
			wantDay:   24,
		},
		{
			name:      "Serial day number with fraction",
			text:      "45658.5",
			wantYear:  2025,
			wantMonth: time.January,
			wantDay:   1,
		},
		{
			name:      "Surrounding whitespace",
			text:      "  01.05.2026 ",
			wantYear:  2026,
			wantMonth: time.May,
			wantDay:   1,
		},
		{name: "Empty", text: "", wantZero: true},
		{name: "Garbage", text: "bald", wantZero: true},
		{name: "Negative serial", text: "-3", wantZero: true},
		{name: "Impossible date", text: "31.02.2025", wantZero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.text)

			if tt.wantZero {
				if !got.IsZero() {
					t.Errorf("ParseDate(%q) = %v, want zero time", tt.text, got)
				}
				return
			}

			if got.Year() != tt.wantYear || got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
				t.Errorf("ParseDate(%q) = %v, want %d-%02d-%02d", tt.text, got, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Time{}); got != "" {
		t.Errorf("FormatDate(zero) = %q, want empty", got)
	}

	d := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "07.03.2025" {
		t.Errorf("FormatDate() = %q, want 07.03.2025", got)
	}
}

func TestMonthName(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), "Januar"},
		{time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), "März"},
		{time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), "Dezember"},
		{time.Time{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := MonthName(tt.date); got != tt.want {
				t.Errorf("MonthName(%v) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"märz", "März"},
		{"OKTOBER", "Oktober"},
		{" juli ", "Juli"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeMonth(tt.in); got != tt.want {
			t.Errorf("NormalizeMonth(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
