// Package convert turns raw station readings into display values.
package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Code selects the unit conversion applied to a field.
type Code int

const (
	None Code = iota
	FtoC
	InchToCm
	MphToMs
	InchToHPa
)

// Catalog spellings of each code. Matching is case-sensitive: "INCH-HPA"
// is a plain unit label, not a conversion.
var codeNames = map[string]Code{
	"F-C":      FtoC,
	"inch-cm":  InchToCm,
	"mph-m/s":  MphToMs,
	"inch-hPa": InchToHPa,
}

// ParseCode maps a catalog unit string to its Code. Anything it does not
// recognize (a plain unit such as "%" or "V", or an empty string) is None.
func ParseCode(s string) Code {
	return codeNames[strings.TrimSpace(s)]
}

func (c Code) String() string {
	switch c {
	case FtoC:
		return "F-C"
	case InchToCm:
		return "inch-cm"
	case MphToMs:
		return "mph-m/s"
	case InchToHPa:
		return "inch-hPa"
	default:
		return "none"
	}
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type rule struct {
	apply    func(float64) float64
	from, to string
}

var rules = map[Code]rule{
	FtoC:      {apply: func(v float64) float64 { return (v - 32) * 5 / 9 }, from: "°F", to: "°C"},
	InchToCm:  {apply: func(v float64) float64 { return v * 2.54 }, from: "inch", to: "cm"},
	MphToMs:   {apply: func(v float64) float64 { return v * 0.447 }, from: "mph", to: "m/s"},
	InchToHPa: {apply: func(v float64) float64 { return v * 3386.39 }, from: "inch", to: "hPa"},
}

// Converts reports whether c has a formula.
func (c Code) Converts() bool {
	_, ok := rules[c]
	return ok
}

// Result is one converted reading.
type Result struct {
	Original      float64 `json:"original"`
	OriginalUnit  string  `json:"originalUnit"`
	Converted     float64 `json:"converted"`
	ConvertedUnit string  `json:"convertedUnit"`
	HasConverted  bool    `json:"hasConverted"`
}

// Convert applies code to v. Both values are rounded to one decimal, half
// away from zero. Codes without a formula pass v through untouched with no
// unit and no converted value; callers supply the catalog's unit label.
func Convert(code Code, v float64) Result {
	r, ok := rules[code]
	if !ok {
		return Result{Original: v}
	}
	return Result{
		Original:      round1(v),
		OriginalUnit:  r.from,
		Converted:     round1(r.apply(v)),
		ConvertedUnit: r.to,
		HasConverted:  true,
	}
}

func round1(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		// Avoid printing "-0.0".
		return 0
	}
	return r
}

// FormatOriginal renders the original side, e.g. "72.5 °F".
func (r Result) FormatOriginal() string {
	return join(strconv.FormatFloat(r.Original, 'f', 1, 64), r.OriginalUnit)
}

// FormatConverted renders the converted side, or "" when there is none.
func (r Result) FormatConverted() string {
	if !r.HasConverted {
		return ""
	}
	return join(strconv.FormatFloat(r.Converted, 'f', 1, 64), r.ConvertedUnit)
}

// Display is a raw row value prepared for a table cell.
type Display struct {
	Original  string `json:"original"`
	Converted string `json:"converted"`
	Result    Result `json:"result"`
	// Numeric is set when the raw value could be read as a number.
	Numeric bool `json:"numeric"`
}

// Value prepares raw for display under code, labelling pass-through values
// with unit. Numbers go through Convert. Values that are not numbers, and
// every value under a code without a formula, are shown as stored with a
// blank conversion.
func Value(code Code, unit string, raw any) Display {
	f, numeric := Float(raw)
	if numeric && code.Converts() {
		res := Convert(code, f)
		return Display{
			Original:  res.FormatOriginal(),
			Converted: res.FormatConverted(),
			Result:    res,
			Numeric:   true,
		}
	}

	d := Display{Numeric: numeric}
	if numeric {
		d.Result = Result{Original: f, OriginalUnit: unit}
	}
	if code.Converts() {
		// Non-numeric reading on a converting field: no unit applies.
		d.Original = Stored(raw)
		return d
	}
	d.Original = join(Stored(raw), unit)
	return d
}

// Float reads raw as a number. Strings are accepted when they parse cleanly.
func Float(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Stored formats raw the way the database holds it.
func Stored(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.DateTime)
	default:
		return fmt.Sprint(v)
	}
}

func join(value, unit string) string {
	if unit == "" || value == "" {
		return value
	}
	return value + " " + unit
}
