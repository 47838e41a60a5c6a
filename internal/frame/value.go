package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Value is a single table cell: exactly one of null, int64, float64 or text.
// The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

func Null() Value           { return Value{} }
func Int(v int64) Value     { return Value{kind: KindInt, i: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func Text(v string) Value   { return Value{kind: KindText, s: v} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// String renders the cell the way it appears in previews. Null renders as "NaN".
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindText:
		return v.s
	default:
		return "NaN"
	}
}

// ToFloat converts numeric cells and numeric text. Null and other text fail.
func (v Value) ToFloat() (float64, error) {
	switch v.kind {
	case KindInt:
		return float64(v.i), nil
	case KindFloat:
		return v.f, nil
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, fmt.Errorf("text %q is not a number", v.s)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("null has no numeric value")
	}
}

// ToInt converts a cell to int64. Floats must be integral and in range; text
// must hold a base-10 integer or an integral float literal such as "19000000.0".
func (v Value) ToInt() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindFloat:
		return floatToInt(v.f)
	case KindText:
		s := strings.TrimSpace(v.s)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("text %q is not an integer", v.s)
		}
		return floatToInt(f)
	default:
		return 0, fmt.Errorf("null has no integer value")
	}
}

func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("float %v is not finite", f)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("float %v is not integral", f)
	}
	// float64(math.MaxInt64) rounds up to 2^63, so compare with >=.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("float %v overflows int64", f)
	}
	return int64(f), nil
}

// DefaultNullMarkers are the cell spellings treated as missing when loading.
var DefaultNullMarkers = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

// Parse infers a Value from raw cell text: null markers become Null, then
// int64, then float64, falling back to Text. Any spelling that parses as a
// float NaN is Null too.
func Parse(raw string, nullMarkers map[string]struct{}) Value {
	s := strings.TrimSpace(raw)
	if _, ok := nullMarkers[s]; ok || (nullMarkers == nil && s == "") {
		return Null()
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) {
			return Null()
		}
		return Float(f)
	}
	return Text(s)
}

// MarkerSet builds the lookup used by Parse.
func MarkerSet(markers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		set[strings.TrimSpace(m)] = struct{}{}
	}
	return set
}

// Compare orders two values: numbers compare numerically across Int and
// Float, text compares lexicographically, numbers sort before text and Null
// sorts before everything.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 1:
		if a.kind == KindInt && b.kind == KindInt {
			switch {
			case a.i < b.i:
				return -1
			case a.i > b.i:
				return 1
			}
			return 0
		}
		fa, _ := a.ToFloat()
		fb, _ := b.ToFloat()
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 2:
		return strings.Compare(a.s, b.s)
	}
	return 0
}

func rank(v Value) int {
	switch v.kind {
	case KindInt, KindFloat:
		return 1
	case KindText:
		return 2
	}
	return 0
}

// Equal reports whether two values are identical in kind and content.
func Equal(a, b Value) bool {
	return a == b
}
