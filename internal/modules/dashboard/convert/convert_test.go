package convert

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name          string
		code          Code
		in            float64
		wantOriginal  string
		wantConverted string
	}{
		{name: "freezing", code: FtoC, in: 32, wantOriginal: "32.0 °F", wantConverted: "0.0 °C"},
		{name: "boiling", code: FtoC, in: 212, wantOriginal: "212.0 °F", wantConverted: "100.0 °C"},
		{name: "just below freezing rounds to zero", code: FtoC, in: 31.99, wantOriginal: "32.0 °F", wantConverted: "0.0 °C"},
		{name: "below zero", code: FtoC, in: -40, wantOriginal: "-40.0 °F", wantConverted: "-40.0 °C"},
		{name: "one inch of pressure", code: InchToHPa, in: 1, wantOriginal: "1.0 inch", wantConverted: "3386.4 hPa"},
		{name: "station pressure", code: InchToHPa, in: 29.92, wantOriginal: "29.9 inch", wantConverted: "101320.8 hPa"},
		{name: "rain", code: InchToCm, in: 0.5, wantOriginal: "0.5 inch", wantConverted: "1.3 cm"},
		{name: "wind", code: MphToMs, in: 10, wantOriginal: "10.0 mph", wantConverted: "4.5 m/s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.code, tt.in)
			if !got.HasConverted {
				t.Fatalf("Convert(%v, %v).HasConverted = false; want true", tt.code, tt.in)
			}
			if s := got.FormatOriginal(); s != tt.wantOriginal {
				t.Errorf("FormatOriginal() = %q; want %q", s, tt.wantOriginal)
			}
			if s := got.FormatConverted(); s != tt.wantConverted {
				t.Errorf("FormatConverted() = %q; want %q", s, tt.wantConverted)
			}
		})
	}
}

func TestConvert_exactValues(t *testing.T) {
	if got := Convert(FtoC, 32); got.Original != 32 || got.Converted != 0 {
		t.Errorf("Convert(FtoC, 32) = %+v; want 32 -> 0", got)
	}
	if got := Convert(FtoC, 212); got.Original != 212 || got.Converted != 100 {
		t.Errorf("Convert(FtoC, 212) = %+v; want 212 -> 100", got)
	}
	if got := Convert(InchToHPa, 1); got.Original != 1 || got.Converted != 3386.4 {
		t.Errorf("Convert(InchToHPa, 1) = %+v; want 1 -> 3386.4", got)
	}
}

func TestConvert_deterministic(t *testing.T) {
	for _, code := range []Code{FtoC, InchToCm, MphToMs, InchToHPa} {
		for _, v := range []float64{-12.35, 0, 0.05, 57.25, 1013.77} {
			first := Convert(code, v)
			for i := 0; i < 3; i++ {
				if again := Convert(code, v); again != first {
					t.Fatalf("Convert(%v, %v) = %+v then %+v", code, v, first, again)
				}
			}
		}
	}
}

func TestConvert_passThrough(t *testing.T) {
	got := Convert(None, 57.25)
	if got.HasConverted {
		t.Error("Convert(None).HasConverted = true; want false")
	}
	if got.Original != 57.25 {
		t.Errorf("Convert(None).Original = %v; want unrounded 57.25", got.Original)
	}
	if got.FormatConverted() != "" {
		t.Errorf("FormatConverted() = %q; want empty", got.FormatConverted())
	}

	if got := Convert(Code(99), 1); got.HasConverted {
		t.Error("Convert(unknown code).HasConverted = true; want false")
	}
}

func TestParseCode(t *testing.T) {
	tests := map[string]Code{
		"F-C":        FtoC,
		" F-C ":      FtoC,
		"f-c":        None,
		"inch-cm":    InchToCm,
		"mph-m/s":    MphToMs,
		"inch-hPa":   InchToHPa,
		"INCH-HPA":   None,
		"Inch-Cm":    None,
		"%":          None,
		"V":          None,
		"":           None,
		"kelvin-F":   None,
		"F-C extra":  None,
		"inch-hPa/2": None,
	}
	for in, want := range tests {
		if got := ParseCode(in); got != want {
			t.Errorf("ParseCode(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		name          string
		code          Code
		unit          string
		raw           any
		wantOriginal  string
		wantConverted string
		wantNumeric   bool
	}{
		{name: "float through formula", code: FtoC, unit: "F-C", raw: 68.0, wantOriginal: "68.0 °F", wantConverted: "20.0 °C", wantNumeric: true},
		{name: "int through formula", code: InchToCm, unit: "inch-cm", raw: int64(2), wantOriginal: "2.0 inch", wantConverted: "5.1 cm", wantNumeric: true},
		{name: "numeric string through formula", code: MphToMs, unit: "mph-m/s", raw: " 20 ", wantOriginal: "20.0 mph", wantConverted: "8.9 m/s", wantNumeric: true},
		{name: "plain unit as stored", code: None, unit: "%", raw: 45.25, wantOriginal: "45.25 %", wantNumeric: true},
		{name: "no unit", code: None, unit: "", raw: int64(7), wantOriginal: "7", wantNumeric: true},
		{name: "text on plain unit", code: None, unit: "V", raw: "OFF", wantOriginal: "OFF V"},
		{name: "text on converting field", code: FtoC, unit: "F-C", raw: "ERR", wantOriginal: "ERR"},
		{name: "null", code: None, unit: "%", raw: nil, wantOriginal: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Value(tt.code, tt.unit, tt.raw)
			if got.Original != tt.wantOriginal {
				t.Errorf("Original = %q; want %q", got.Original, tt.wantOriginal)
			}
			if got.Converted != tt.wantConverted {
				t.Errorf("Converted = %q; want %q", got.Converted, tt.wantConverted)
			}
			if got.Numeric != tt.wantNumeric {
				t.Errorf("Numeric = %v; want %v", got.Numeric, tt.wantNumeric)
			}
		})
	}
}

func TestStored(t *testing.T) {
	ts := time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{in: nil, want: ""},
		{in: "abc", want: "abc"},
		{in: int64(-3), want: "-3"},
		{in: 1.5, want: "1.5"},
		{in: 2.0, want: "2"},
		{in: true, want: "true"},
		{in: ts, want: "2024-05-01 13:04:05"},
	}
	for _, tt := range tests {
		if got := Stored(tt.in); got != tt.want {
			t.Errorf("Stored(%#v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestResult_freezingPointKeepsConverted(t *testing.T) {
	res := Convert(FtoC, 32)
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{`"converted":0`, `"convertedUnit":"°C"`, `"hasConverted":true`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("json %s missing %s", b, want)
		}
	}
}
