package routeros

import (
	"github.com/go-viper/mapstructure/v2"

	"github.com/mikrotik-api/mikrotik-go/pkg/wire"
)

// Record is the raw attribute view of one reply sentence: every
// `=key=value` and `.key=value` word as a map entry, without the
// correlation tag. Generic calls can decode into Record directly when
// no typed struct fits.
type Record map[string]string

// newRecord collects the attribute words of s. A duplicated key keeps
// its last value.
func newRecord(s wire.Sentence) Record {
	attrs := s.Attributes()
	r := make(Record, len(attrs))
	for _, a := range attrs {
		r[a.Key] = a.Value
	}
	return r
}

// decodeAs maps one reply sentence onto the caller's type through the
// weakly typed binding: struct fields are matched by `ros` tag, string
// values convert to numeric and bool fields, and any field type
// implementing encoding.TextUnmarshaler parses itself.
func decodeAs[T any](command string, s wire.Sentence) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "ros",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
	})
	if err != nil {
		return out, &DecodeError{Command: command, Err: err}
	}
	if err := dec.Decode(map[string]string(newRecord(s))); err != nil {
		return out, &DecodeError{Command: command, Err: err}
	}
	return out, nil
}
