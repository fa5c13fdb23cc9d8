// Package catalog provides the immutable assessment catalog and the sources it
// can be loaded from.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Assessment is a single catalog record. Records are never modified after load.
type Assessment struct {
	URL             string   `json:"url,omitempty" cbor:"url,omitempty"`
	Description     string   `json:"description" cbor:"description"`
	TestType        []string `json:"test_type" cbor:"test_type"`
	AdaptiveSupport string   `json:"adaptive_support" cbor:"adaptive_support"`
	RemoteSupport   string   `json:"remote_support" cbor:"remote_support"`
	Duration        Duration `json:"duration" cbor:"duration"`
}

// Duration holds an assessment length that may be numeric ("60") or free text
// ("Variable"). The original representation is kept for serialization.
type Duration struct {
	text    string
	numeric bool
}

// NumericDuration returns a numeric Duration. NaN and infinities have no JSON
// number form and are kept as text.
func NumericDuration(v float64) Duration {
	if !isFinite(v) {
		return TextDuration(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return Duration{text: strconv.FormatFloat(v, 'f', -1, 64), numeric: true}
}

// TextDuration returns a textual Duration.
func TextDuration(s string) Duration {
	return Duration{text: s}
}

// ParseDuration returns a numeric Duration when s is a finite number and a
// textual one otherwise, so "NaN" or "Inf" stay strings.
func ParseDuration(s string) Duration {
	trimmed := strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && isFinite(f) {
		return NumericDuration(f)
	}
	return TextDuration(s)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// String returns the duration as it appears in text.
func (d Duration) String() string { return d.text }

// IsNumeric reports whether the duration was given as a number.
func (d Duration) IsNumeric() bool { return d.numeric }

// MarshalJSON writes numbers as numbers and text as strings.
func (d Duration) MarshalJSON() ([]byte, error) {
	if d.numeric {
		return []byte(d.text), nil
	}
	return json.Marshal(d.text)
}

// UnmarshalJSON accepts a JSON number or string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("duration must be a number or string")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = TextDuration(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration must be a number or string: %w", err)
	}
	*d = Duration{text: n.String(), numeric: true}
	return nil
}

// MarshalCBOR writes numbers as CBOR floats or integers and text as strings.
func (d Duration) MarshalCBOR() ([]byte, error) {
	if !d.numeric {
		return cbor.Marshal(d.text)
	}
	if i, err := strconv.ParseInt(d.text, 10, 64); err == nil {
		return cbor.Marshal(i)
	}
	f, err := strconv.ParseFloat(d.text, 64)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(f)
}

// UnmarshalCBOR accepts a CBOR integer, float or text string.
func (d *Duration) UnmarshalCBOR(data []byte) error {
	var v any
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		*d = TextDuration(val)
	case uint64:
		*d = Duration{text: strconv.FormatUint(val, 10), numeric: true}
	case int64:
		*d = Duration{text: strconv.FormatInt(val, 10), numeric: true}
	case float64:
		*d = NumericDuration(val)
	case float32:
		*d = NumericDuration(float64(val))
	default:
		return fmt.Errorf("duration must be a number or string, got %T", v)
	}
	return nil
}
