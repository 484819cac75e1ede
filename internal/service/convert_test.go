package service

import (
	"strings"
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    int64
		expected string
	}{
		{
			name:     "seconds",
			input:    1700000000,
			expected: "14 Nov 2023 22:13",
		},
		{
			name:     "milliseconds",
			input:    1700000000000,
			expected: "14 Nov 2023 22:13",
		},
		{
			name:     "epoch",
			input:    0,
			expected: "01 Jan 1970 00:00",
		},
		{
			name:     "threshold is read as seconds",
			input:    10_000_000_000,
			expected: "20 Nov 2286 17:46",
		},
		{
			name:     "just above threshold is read as milliseconds",
			input:    10_000_000_001,
			expected: "26 Apr 1970 17:46",
		},
		{
			name:     "negative seconds",
			input:    -86400,
			expected: "31 Dec 1969 00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatTimestamp(tt.input, time.UTC)
			if result != tt.expected {
				t.Errorf("FormatTimestamp(%d) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatTimestampUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)

	result := FormatTimestamp(1700000000, tokyo)
	if result != "15 Nov 2023 07:13" {
		t.Errorf("FormatTimestamp in JST = %q, want %q", result, "15 Nov 2023 07:13")
	}
}

func TestFormatTimestampMonotonicWithinRegime(t *testing.T) {
	layout := displayLayout
	parse := func(s string) time.Time {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", s, err)
		}
		return parsed
	}

	regimes := []struct {
		name  string
		start int64
		step  int64
	}{
		{name: "seconds", start: 0, step: 99_999_999},
		{name: "milliseconds", start: 10_000_000_001, step: 7_777_777_777},
	}

	for _, r := range regimes {
		t.Run(r.name, func(t *testing.T) {
			prev := parse(FormatTimestamp(r.start, time.UTC))
			for i := int64(1); i <= 100; i++ {
				ts := r.start + i*r.step
				if r.name == "seconds" && ts > millisecondThreshold {
					break
				}
				cur := parse(FormatTimestamp(ts, time.UTC))
				if cur.Before(prev) {
					t.Fatalf("FormatTimestamp(%d) = %v is before previous %v", ts, cur, prev)
				}
				prev = cur
			}
		})
	}
}

func TestFahrenheitToCelsius(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "freezing point", input: 32.0, expected: "0.00"},
		{name: "boiling point", input: 212.0, expected: "100.00"},
		{name: "crossover", input: -40.0, expected: "-40.00"},
		{name: "kelvin value passed through", input: 300.0, expected: "148.89"},
		{name: "rounds to two places", input: 100.0, expected: "37.78"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FahrenheitToCelsius(tt.input)
			if result != tt.expected {
				t.Errorf("FahrenheitToCelsius(%v) = %q, want %q", tt.input, result, tt.expected)
			}

			dot := strings.IndexByte(result, '.')
			if dot < 0 || len(result)-dot-1 != 2 {
				t.Errorf("FahrenheitToCelsius(%v) = %q, want exactly two decimals", tt.input, result)
			}
			if strings.Contains(result, ",") {
				t.Errorf("FahrenheitToCelsius(%v) = %q uses a comma separator", tt.input, result)
			}
		})
	}
}

func TestVisibilityLabel(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{input: 12000, expected: "Excellent (10km+)"},
		{input: 10000, expected: "Excellent (10km+)"},
		{input: 9999, expected: "Good (4km - 10km)"},
		{input: 4000, expected: "Good (4km - 10km)"},
		{input: 3999, expected: "Moderate (1km - 4km)"},
		{input: 1000, expected: "Moderate (1km - 4km)"},
		{input: 999, expected: "Low (500m - 1km)"},
		{input: 500, expected: "Low (500m - 1km)"},
		{input: 499, expected: "Poor (100m - 500m)"},
		{input: 100, expected: "Poor (100m - 500m)"},
		{input: 99, expected: "Very Poor (< 100m)"},
		{input: 0, expected: "Very Poor (< 100m)"},
		{input: -1, expected: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := VisibilityLabel(tt.input)
			if result != tt.expected {
				t.Errorf("VisibilityLabel(%d) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
