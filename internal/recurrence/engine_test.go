package recurrence

import (
	"errors"
	"testing"
	"time"
)

func anchorOn(year int, month time.Month, day, hour int) (time.Time, time.Time) {
	start := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return start, start.Add(90 * time.Minute)
}

func TestEngine_Expand_Weekly(t *testing.T) {
	t.Parallel()
	engine := NewEngine(time.UTC)

	t.Run("emits only selected weekdays after the anchor", func(t *testing.T) {
		t.Parallel()
		// 2025-09-01 is a Monday.
		start, end := anchorOn(2025, time.September, 1, 9)

		got, err := engine.Expand(Request{
			AnchorStart: start,
			AnchorEnd:   end,
			Frequency:   FrequencyWeekly,
			Weekdays:    []time.Weekday{time.Monday},
			Count:       3,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 occurrences, got %d", len(got))
		}
		for i, occ := range got {
			if occ.Start.Weekday() != time.Monday {
				t.Fatalf("occurrence %d is a %s, want Monday", i, occ.Start.Weekday())
			}
			if !occ.Start.After(start) {
				t.Fatalf("occurrence %d (%v) is not strictly after the anchor", i, occ.Start)
			}
			if occ.Start.Hour() != 9 || occ.End.Sub(occ.Start) != 90*time.Minute {
				t.Fatalf("occurrence %d does not replicate the anchor window: %v-%v", i, occ.Start, occ.End)
			}
		}
		want := start.AddDate(0, 0, 7)
		if !got[0].Start.Equal(want) {
			t.Fatalf("first occurrence = %v, want %v", got[0].Start, want)
		}
	})

	t.Run("multiple weekdays stay chronological", func(t *testing.T) {
		t.Parallel()
		start, end := anchorOn(2025, time.September, 1, 14)

		got, err := engine.Expand(Request{
			AnchorStart: start,
			AnchorEnd:   end,
			Frequency:   FrequencyWeekly,
			Weekdays:    []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			Count:       5,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) != 5 {
			t.Fatalf("expected 5 occurrences, got %d", len(got))
		}
		for i := 1; i < len(got); i++ {
			if !got[i].Start.After(got[i-1].Start) {
				t.Fatalf("occurrences out of order at %d: %v then %v", i, got[i-1].Start, got[i].Start)
			}
		}
		// Wednesday and Friday of the anchor week come before next Monday.
		if got[0].Start.Weekday() != time.Wednesday || got[1].Start.Weekday() != time.Friday {
			t.Fatalf("expected Wednesday then Friday first, got %s then %s", got[0].Start.Weekday(), got[1].Start.Weekday())
		}
	})

	t.Run("empty weekday set yields zero occurrences", func(t *testing.T) {
		t.Parallel()
		start, end := anchorOn(2025, time.September, 1, 9)

		got, err := engine.Expand(Request{
			AnchorStart: start,
			AnchorEnd:   end,
			Frequency:   FrequencyWeekly,
			Count:       10,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected empty expansion, got %d occurrences", len(got))
		}
	})

	t.Run("end date bounds the scan inclusively", func(t *testing.T) {
		t.Parallel()
		start, end := anchorOn(2025, time.September, 1, 9)
		until := time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC)

		got, err := engine.Expand(Request{
			AnchorStart: start,
			AnchorEnd:   end,
			Frequency:   FrequencyWeekly,
			Weekdays:    []time.Weekday{time.Monday},
			Until:       &until,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		// Sep 8 and Sep 15; the anchor Monday is excluded.
		if len(got) != 2 {
			t.Fatalf("expected 2 occurrences, got %d", len(got))
		}
		if got[1].Start.Day() != 15 {
			t.Fatalf("expected the end date itself to qualify, got %v", got[1].Start)
		}
	})
}

func TestEngine_Expand_Daily(t *testing.T) {
	t.Parallel()
	engine := NewEngine(time.UTC)

	t.Run("count is respected exactly", func(t *testing.T) {
		t.Parallel()
		start, end := anchorOn(2025, time.October, 30, 8)

		got, err := engine.Expand(Request{
			AnchorStart: start,
			AnchorEnd:   end,
			Frequency:   FrequencyDaily,
			Count:       5,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) != 5 {
			t.Fatalf("expected 5 occurrences, got %d", len(got))
		}
		for i, occ := range got {
			want := start.AddDate(0, 0, i+1)
			if !occ.Start.Equal(want) {
				t.Fatalf("occurrence %d = %v, want %v", i, occ.Start, want)
			}
		}
	})

	t.Run("distant end date is capped by the iteration ceiling", func(t *testing.T) {
		t.Parallel()
		start, end := anchorOn(2025, time.January, 1, 8)
		until := start.AddDate(10, 0, 0)

		got, err := engine.Expand(Request{
			AnchorStart: start,
			AnchorEnd:   end,
			Frequency:   FrequencyDaily,
			Until:       &until,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) > MaxIterations {
			t.Fatalf("expansion exceeded the safety ceiling: %d", len(got))
		}
	})
}

func TestEngine_Expand_Monthly(t *testing.T) {
	t.Parallel()
	engine := NewEngine(time.UTC)

	t.Run("anchors to the day of month", func(t *testing.T) {
		t.Parallel()
		start, end := anchorOn(2025, time.September, 10, 11)

		got, err := engine.Expand(Request{
			AnchorStart: start,
			AnchorEnd:   end,
			Frequency:   FrequencyMonthly,
			Count:       3,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 occurrences, got %d", len(got))
		}
		for i, occ := range got {
			if occ.Start.Day() != 10 {
				t.Fatalf("occurrence %d on day %d, want 10", i, occ.Start.Day())
			}
		}
		if got[0].Start.Month() != time.October || got[2].Start.Month() != time.December {
			t.Fatalf("unexpected months: %v", got)
		}
	})

	t.Run("months lacking the anchor day are skipped", func(t *testing.T) {
		t.Parallel()
		// Anchor on August 31st: September, November, ... have no 31st.
		start, end := anchorOn(2025, time.August, 31, 9)

		got, err := engine.Expand(Request{
			AnchorStart: start,
			AnchorEnd:   end,
			Frequency:   FrequencyMonthly,
			Count:       3,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 occurrences, got %d", len(got))
		}
		wantMonths := []time.Month{time.October, time.December, time.January}
		for i, occ := range got {
			if occ.Start.Month() != wantMonths[i] || occ.Start.Day() != 31 {
				t.Fatalf("occurrence %d = %v, want the 31st of %s", i, occ.Start, wantMonths[i])
			}
		}
	})

	t.Run("February never produces a 30th", func(t *testing.T) {
		t.Parallel()
		start, end := anchorOn(2025, time.January, 30, 9)
		until := time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC)

		got, err := engine.Expand(Request{
			AnchorStart: start,
			AnchorEnd:   end,
			Frequency:   FrequencyMonthly,
			Until:       &until,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		// March 30 and April 30; February is skipped.
		if len(got) != 2 {
			t.Fatalf("expected 2 occurrences, got %v", got)
		}
		if got[0].Start.Month() != time.March || got[1].Start.Month() != time.April {
			t.Fatalf("unexpected months: %v, %v", got[0].Start, got[1].Start)
		}
	})
}

func TestEngine_Expand_Validation(t *testing.T) {
	t.Parallel()
	engine := NewEngine(time.UTC)
	start, end := anchorOn(2025, time.September, 1, 9)

	cases := []struct {
		name string
		req  Request
		want error
	}{
		{
			name: "unspecified frequency",
			req:  Request{AnchorStart: start, AnchorEnd: end, Count: 3},
			want: ErrInvalidFrequency,
		},
		{
			name: "inverted anchor window",
			req:  Request{AnchorStart: end, AnchorEnd: start, Frequency: FrequencyDaily, Count: 3},
			want: ErrInvalidDuration,
		},
		{
			name: "missing termination",
			req:  Request{AnchorStart: start, AnchorEnd: end, Frequency: FrequencyDaily},
			want: ErrInvalidTermination,
		},
		{
			name: "negative count",
			req:  Request{AnchorStart: start, AnchorEnd: end, Frequency: FrequencyDaily, Count: -1},
			want: ErrInvalidTermination,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := engine.Expand(tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("oversized count is clamped, not rejected", func(t *testing.T) {
		t.Parallel()
		got, err := engine.Expand(Request{
			AnchorStart: start,
			AnchorEnd:   end,
			Frequency:   FrequencyDaily,
			Count:       100000,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) > MaxIterations {
			t.Fatalf("expected at most %d occurrences, got %d", MaxIterations, len(got))
		}
	})
}

func TestParseFrequency(t *testing.T) {
	t.Parallel()

	cases := map[string]Frequency{
		"daily":   FrequencyDaily,
		"weekly":  FrequencyWeekly,
		"monthly": FrequencyMonthly,
		"yearly":  FrequencyUnspecified,
		"":        FrequencyUnspecified,
	}
	for value, want := range cases {
		if got := ParseFrequency(value); got != want {
			t.Fatalf("ParseFrequency(%q) = %v, want %v", value, got, want)
		}
	}
}
