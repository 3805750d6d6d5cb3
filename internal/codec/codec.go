// Package codec encodes the records of file backed stores.
package codec

import "encoding/json"

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON writes indented documents when Indent is set and compact ones
// otherwise.
type JSON struct {
	Indent string
}

// Pretty is the codec used for files meant to be read by people.
var Pretty Codec = JSON{Indent: "  "}

func (c JSON) Marshal(v any) ([]byte, error) {
	if c.Indent == "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", c.Indent)
}

func (JSON) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }
