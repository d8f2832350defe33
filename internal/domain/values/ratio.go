package values

import (
	"encoding/json"
	"fmt"
)

// Ratio represents a derived performance ratio (CTR, CVR, ACOS, CPC) that may
// be absent when its denominator is zero. Absence is explicit rather than a
// sentinel value so "no data" can never be mistaken for a real zero.
type Ratio struct {
	value   float64
	present bool
}

// PresentRatio creates a Ratio holding a value
func PresentRatio(value float64) Ratio {
	return Ratio{value: value, present: true}
}

// AbsentRatio creates a Ratio with no value
func AbsentRatio() Ratio {
	return Ratio{}
}

// RatioOf divides num by den, returning an absent Ratio when den is not positive
func RatioOf(num, den int64) Ratio {
	if den <= 0 {
		return AbsentRatio()
	}
	return PresentRatio(float64(num) / float64(den))
}

// Present reports whether the ratio holds a value
func (r Ratio) Present() bool {
	return r.present
}

// Value returns the held value and whether it is present
func (r Ratio) Value() (float64, bool) {
	return r.value, r.present
}

// OrZero returns the held value, or 0 when absent. Callers must only use this
// for display; decision logic checks Present first.
func (r Ratio) OrZero() float64 {
	return r.value
}

// GreaterThan reports whether the ratio is present and strictly greater than v
func (r Ratio) GreaterThan(v float64) bool {
	return r.present && r.value > v
}

// AtLeast reports whether the ratio is present and at least v
func (r Ratio) AtLeast(v float64) bool {
	return r.present && r.value >= v
}

// IsZero reports whether the ratio is present and exactly zero
func (r Ratio) IsZero() bool {
	return r.present && r.value == 0
}

// String formats the ratio for logs and reason details
func (r Ratio) String() string {
	if !r.present {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", r.value)
}

// MarshalJSON encodes an absent ratio as null
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.present {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

// UnmarshalJSON decodes null as an absent ratio
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = AbsentRatio()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = PresentRatio(v)
	return nil
}
