package utils

import (
	"testing"
	"time"
)

func TestParseReportDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want time.Time
	}{
		{"2013-01-17 00:00:00", time.Date(2013, 1, 17, 0, 0, 0, 0, time.UTC)},
		{"01/15/2013", time.Date(2013, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2012-06-01", time.Date(2012, 6, 1, 0, 0, 0, 0, time.UTC)},
		{" 01/15/2013 ", time.Date(2013, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseReportDate(tc.in)
		if err != nil {
			t.Fatalf("ParseReportDate(%q): %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("ParseReportDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseReportDate_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "not a date", "13/45/2013"} {
		if _, err := ParseReportDate(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
