package mixing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/whomstve123/mixing-api/internal/mixer"
	"github.com/whomstve123/mixing-api/internal/services"
)

// StemDescriptor is one entry of the request's stems array. It is either a
// URLStem or a RecordStem and is resolved once, during ParseRequest.
type StemDescriptor interface {
	stemURL() string
}

// URLStem is a stem given as a bare URL string.
type URLStem string

func (s URLStem) stemURL() string { return string(s) }

// RecordStem is a stem given as an object with a url field.
type RecordStem struct {
	URL string `json:"url"`
}

func (s RecordStem) stemURL() string { return s.URL }

// ResolvedStem is a validated stem: its position in the request and its
// trimmed, non-empty URL.
type ResolvedStem struct {
	Index int
	URL   string
}

// Request is a validated mix request.
type Request struct {
	Stems []ResolvedStem
	// Volumes mirrors the caller's array; nil entries mark null or
	// non-numeric values.
	Volumes []*float64
}

// VolumeAt returns the gain for stem i: the caller's value when present and
// numeric, 1.0 otherwise. Values are not clamped.
func (r Request) VolumeAt(i int) float64 {
	if i < 0 || i >= len(r.Volumes) || r.Volumes[i] == nil {
		return mixer.DefaultVolume
	}
	return *r.Volumes[i]
}

// ResolvedVolumes returns one gain per stem.
func (r Request) ResolvedVolumes() []float64 {
	volumes := make([]float64, len(r.Stems))
	for i := range r.Stems {
		volumes[i] = r.VolumeAt(i)
	}
	return volumes
}

// ValidationError describes why a request was rejected. Index is -1 when the
// problem is not tied to a single stem. Received echoes the offending JSON
// value (nil renders as null).
type ValidationError struct {
	Message  string
	Index    int
	Received json.RawMessage
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s (index %d)", e.Message, e.Index)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return services.ErrInvalidInput }

type rawRequest struct {
	Stems   json.RawMessage `json:"stems"`
	Volumes json.RawMessage `json:"volumes"`
}

// ParseRequest decodes and validates a /mix body. Validation stops at the
// first bad stem; nothing is fetched for a rejected request.
func ParseRequest(body []byte) (Request, error) {
	var raw rawRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		return Request{}, &ValidationError{Message: "Request body must be a JSON object", Index: -1}
	}

	var elements []json.RawMessage
	if !isJSONArray(raw.Stems) || json.Unmarshal(raw.Stems, &elements) != nil || len(elements) == 0 {
		return Request{}, &ValidationError{
			Message:  "stems must be a non-empty array",
			Index:    -1,
			Received: nullIfEmpty(raw.Stems),
		}
	}

	stems := make([]ResolvedStem, 0, len(elements))
	for i, element := range elements {
		descriptor, ok := decodeStem(element)
		if !ok {
			return Request{}, &ValidationError{
				Message:  fmt.Sprintf("Invalid stem at index %d: expected a URL string or an object with a url string", i),
				Index:    i,
				Received: element,
			}
		}
		url := strings.TrimSpace(descriptor.stemURL())
		if url == "" {
			return Request{}, &ValidationError{
				Message:  fmt.Sprintf("Invalid stem at index %d: url is empty", i),
				Index:    i,
				Received: element,
			}
		}
		stems = append(stems, ResolvedStem{Index: i, URL: url})
	}

	return Request{Stems: stems, Volumes: decodeVolumes(raw.Volumes)}, nil
}

func decodeStem(element json.RawMessage) (StemDescriptor, bool) {
	trimmed := bytes.TrimSpace(element)
	if len(trimmed) == 0 {
		return nil, false
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, false
		}
		return URLStem(s), true
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, false
		}
		rawURL, ok := fields["url"]
		if !ok {
			return nil, false
		}
		var s string
		if err := json.Unmarshal(rawURL, &s); err != nil {
			return nil, false
		}
		return RecordStem{URL: s}, true
	default:
		return nil, false
	}
}

// decodeVolumes keeps numeric entries and leaves gaps for anything else. A
// missing or non-array volumes field yields no entries.
func decodeVolumes(raw json.RawMessage) []*float64 {
	if !isJSONArray(raw) {
		return nil
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil
	}
	volumes := make([]*float64, len(elements))
	for i, element := range elements {
		trimmed := bytes.TrimSpace(element)
		if len(trimmed) == 0 || (trimmed[0] != '-' && (trimmed[0] < '0' || trimmed[0] > '9')) {
			continue
		}
		var v float64
		if err := json.Unmarshal(trimmed, &v); err == nil {
			volumes[i] = &v
		}
	}
	return volumes
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func nullIfEmpty(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return raw
}
