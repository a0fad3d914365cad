package units

import (
	"math"
	"testing"
)

func TestDecode_AllUnits(t *testing.T) {
	table := DefaultTable()

	for _, u := range table.Units() {
		for _, x := range []string{"1", "630.81", "1000"} {
			t.Run(x+u.Symbol, func(t *testing.T) {
				got := table.Decode(x + u.Symbol)
				num := table.Decode(x)
				want := num * u.Multiplier
				if got != want {
					t.Errorf("Decode(%q) = %v, want %v", x+u.Symbol, got, want)
				}
			})
		}
	}
}

func TestDecode_Fallbacks(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"Empty", "", 0},
		{"Spaces", "   ", 0},
		{"Plain", "12345", 12345},
		{"PlainDecimal", "12.5", 12.5},
		{"PaddedPlain", " 42 ", 42},
		{"ThousandsSeparator", "1,234", 1234},
		{"UnknownSuffix", "100xyz", 100},
		{"Garbage", "abc", 0},
		{"MixedGarbage", "12K34", 0},
		{"Infinity", "Infinity", 0},
		{"NaN", "NaN", 0},
		{"Exponent", "1e5", 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Decode(tt.input); got != tt.want {
				t.Errorf("Decode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{"Zero", 0, "0"},
		{"BelowThreshold", 999, "999"},
		{"Fraction", 12.5, "12.5"},
		{"ExactK", 1000, "1.00K"},
		{"K", 630810, "630.81K"},
		{"M", 1.5e6, "1.50M"},
		{"B", 2.25e9, "2.25B"},
		{"LowerQ", 3e15, "3.00q"},
		{"UpperQ", 3e18, "3.00Q"},
		{"Ac", 5e42, "5.00ac"},
		{"BeyondAc", 5e45, "5000.00ac"},
		{"NaN", math.NaN(), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Encode(tt.input); got != tt.want {
				t.Errorf("Encode(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEncode_PicksLargestUnit(t *testing.T) {
	table := DefaultTable()

	for _, u := range table.Units() {
		t.Run(u.Symbol, func(t *testing.T) {
			got := table.Encode(u.Multiplier * 3)
			want := "3.00" + u.Symbol
			if got != want {
				t.Errorf("Encode(3*%s) = %q, want %q", u.Symbol, got, want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	table := DefaultTable()

	values := []float64{1000, 1234, 99999, 630810, 7.77e8, 1.23456e13, 9.99e20, 4.2e33, 1.5e41}
	for _, v := range values {
		got := table.Decode(table.Encode(v))
		if rel := math.Abs(got-v) / v; rel > 0.01 {
			t.Errorf("Decode(Encode(%v)) = %v, relative error %v", v, got, rel)
		}
	}
}

func TestWith(t *testing.T) {
	base := DefaultTable()
	extended := base.With(Unit{Symbol: "ad", Multiplier: 1e45})

	if _, ok := base.Multiplier("ad"); ok {
		t.Error("With() must not mutate the receiver")
	}
	if got := extended.Decode("2ad"); got != 2e45 {
		t.Errorf("Decode(2ad) = %v, want 2e45", got)
	}
	if got := extended.Encode(5e45); got != "5.00ad" {
		t.Errorf("Encode(5e45) = %q, want 5.00ad", got)
	}
}

func TestNewTable_SkipsInvalid(t *testing.T) {
	table := NewTable(Unit{"", 10}, Unit{"X", 0}, Unit{"K", 1e3})
	if n := len(table.Units()); n != 1 {
		t.Errorf("len(Units()) = %d, want 1", n)
	}
}

func TestLevel(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		input string
		want  int
	}{
		{"121.24K", 1},
		{"143.81K/h", 1},
		{"2.00M", 2},
		{"3.00B", 3},
		{"4.00T", 4},
		{"15.02q/h", 5},
		{"1.00Q", 6},
		{"999", 0},
		{"-", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := table.Level(tt.input); got != tt.want {
				t.Errorf("Level(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
