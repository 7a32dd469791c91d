package scanner

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Document is a loosely structured JSON value. Accessors never fail: a missing
// or mistyped field yields the zero Document or the supplied default.
type Document struct {
	value any
}

// ParseDocument decodes body into a Document.
func ParseDocument(body []byte) (Document, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return Document{}, err
	}
	return Document{value: v}, nil
}

// IsNull reports whether the document holds no value.
func (d Document) IsNull() bool { return d.value == nil }

// IsObject reports whether the document is a JSON object.
func (d Document) IsObject() bool {
	_, ok := d.value.(map[string]any)
	return ok
}

// IsArray reports whether the document is a JSON array.
func (d Document) IsArray() bool {
	_, ok := d.value.([]any)
	return ok
}

// Has reports whether the document is an object containing key.
func (d Document) Has(key string) bool {
	obj, ok := d.value.(map[string]any)
	if !ok {
		return false
	}
	_, ok = obj[key]
	return ok
}

// Get returns the member key of an object, or a null Document.
func (d Document) Get(key string) Document {
	obj, ok := d.value.(map[string]any)
	if !ok {
		return Document{}
	}
	return Document{value: obj[key]}
}

// String returns member key as a string, or def if absent or not a string.
func (d Document) String(key, def string) string {
	if s, ok := d.Get(key).value.(string); ok {
		return s
	}
	return def
}

// Items returns the elements of an array document, or nil.
func (d Document) Items() []Document {
	arr, ok := d.value.([]any)
	if !ok {
		return nil
	}
	out := make([]Document, len(arr))
	for i, v := range arr {
		out[i] = Document{value: v}
	}
	return out
}

// MarshalJSON encodes the underlying value.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.value)
}

// UnmarshalJSON decodes any JSON value into the document.
func (d *Document) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	d.value = v
	return nil
}

// UnsetExpiry is the zero timestamp the service reports for models without an expiry.
const UnsetExpiry = "0001-01-01T00:00:00Z"

// Model is one model descriptor of a catalog or running-models listing.
type Model struct {
	Name          string `json:"name"`
	ParameterSize string `json:"parameter_size"`
	Quantization  string `json:"quantization_level"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

// Models extracts the "models" array of a listing document. ok is false when
// the document is not an object with a "models" array.
func Models(doc Document) (models []Model, ok bool) {
	list := doc.Get("models")
	if !doc.Has("models") || !list.IsArray() {
		return nil, false
	}
	models = []Model{}
	for _, item := range list.Items() {
		m := Model{
			Name:          item.String("name", "N/A"),
			ParameterSize: "?",
			Quantization:  "?",
			ExpiresAt:     item.String("expires_at", ""),
		}
		if details := item.Get("details"); details.IsObject() {
			m.ParameterSize = details.String("parameter_size", "?")
			m.Quantization = details.String("quantization_level", "?")
		}
		models = append(models, m)
	}
	return models, true
}

// HasExpiry reports whether ExpiresAt carries a real timestamp.
func (m Model) HasExpiry() bool {
	return m.ExpiresAt != "" && m.ExpiresAt != UnsetExpiry
}
