package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Catalog decoding errors.
var (
	ErrMalformedCatalog = errors.New("malformed catalog")
	ErrMissingRecords   = errors.New("catalog has no recommended_assessments list")
	ErrUnknownFormat    = errors.New("unknown catalog format")
)

// Format is the encoding of a catalog document.
type Format string

// Supported catalog formats.
const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// FormatFromPath infers the format from a file name, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbor":
		return FormatCBOR
	default:
		return FormatJSON
	}
}

// ParseFormat parses a configured format name. An empty name defers to the
// file extension of path.
func ParseFormat(name, path string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return FormatFromPath(path), nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatCBOR):
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// document is the wrapping object every catalog file uses.
type jsonDocument struct {
	Records *[]json.RawMessage `json:"recommended_assessments"`
}

type cborDocument struct {
	Records *[]cbor.RawMessage `cbor:"recommended_assessments"`
}

// record mirrors Assessment with pointers so missing fields can be told apart
// from empty ones.
type record struct {
	URL             *string   `json:"url" cbor:"url"`
	Description     *string   `json:"description" cbor:"description"`
	TestType        *[]string `json:"test_type" cbor:"test_type"`
	AdaptiveSupport *string   `json:"adaptive_support" cbor:"adaptive_support"`
	RemoteSupport   *string   `json:"remote_support" cbor:"remote_support"`
	Duration        *Duration `json:"duration" cbor:"duration"`
}

// Decode parses a catalog document. The whole catalog is rejected at the
// first malformed record.
func Decode(data []byte, format Format) (*Catalog, error) {
	var raws [][]byte
	switch format {
	case FormatJSON:
		var doc jsonDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
		}
		if doc.Records == nil {
			return nil, ErrMissingRecords
		}
		for _, r := range *doc.Records {
			raws = append(raws, r)
		}
	case FormatCBOR:
		var doc cborDocument
		if err := cbor.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
		}
		if doc.Records == nil {
			return nil, ErrMissingRecords
		}
		for _, r := range *doc.Records {
			raws = append(raws, r)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	items := make([]Assessment, 0, len(raws))
	for i, raw := range raws {
		var rec record
		var err error
		if format == FormatCBOR {
			err = cbor.Unmarshal(raw, &rec)
		} else {
			err = json.Unmarshal(raw, &rec)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedCatalog, i, err)
		}
		a, err := rec.toAssessment()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedCatalog, i, err)
		}
		items = append(items, a)
	}
	return New(items), nil
}

func (r record) toAssessment() (Assessment, error) {
	switch {
	case r.Description == nil || strings.TrimSpace(*r.Description) == "":
		return Assessment{}, errors.New("description is required")
	case r.TestType == nil:
		return Assessment{}, errors.New("test_type is required")
	case r.AdaptiveSupport == nil:
		return Assessment{}, errors.New("adaptive_support is required")
	case r.RemoteSupport == nil:
		return Assessment{}, errors.New("remote_support is required")
	case r.Duration == nil:
		return Assessment{}, errors.New("duration is required")
	}

	a := Assessment{
		Description:     *r.Description,
		TestType:        append([]string(nil), *r.TestType...),
		AdaptiveSupport: *r.AdaptiveSupport,
		RemoteSupport:   *r.RemoteSupport,
		Duration:        *r.Duration,
	}
	if a.TestType == nil {
		a.TestType = []string{}
	}
	if r.URL != nil {
		a.URL = *r.URL
	}
	return a, nil
}

// EncodeJSON writes a catalog as a JSON document.
func EncodeJSON(c *Catalog) ([]byte, error) {
	return json.Marshal(struct {
		Records []Assessment `json:"recommended_assessments"`
	}{Records: c.All()})
}

// EncodeCBOR writes a catalog as a CBOR document.
func EncodeCBOR(c *Catalog) ([]byte, error) {
	return cbor.Marshal(struct {
		Records []Assessment `cbor:"recommended_assessments"`
	}{Records: c.All()})
}
