package wire

import "strings"

// Control words. The first word of every device-originated sentence is
// one of these.
const (
	// WordReply starts a data-bearing continuation sentence.
	WordReply = "!re"

	// WordDone starts a completion sentence.
	WordDone = "!done"

	// WordTrap starts a device error sentence scoped to one exchange.
	WordTrap = "!trap"

	// WordFatal starts a device error sentence terminating the connection.
	WordFatal = "!fatal"
)

// TagKey is the API attribute key carrying the correlation tag.
const TagKey = ".tag"

// Word is a single protocol token. Words are opaque byte strings at the
// codec level; binary content passes through unmodified.
type Word []byte

// String returns the word bytes as a string.
func (w Word) String() string {
	return string(w)
}

// Attribute is a parsed key/value pair from an attribute word.
type Attribute struct {
	Key   string
	Value string
}

// ParseAttribute splits an attribute word into its key and value.
// Two forms parse: "=key=value" (data attribute, the leading '=' is
// dropped from the key) and ".key=value" (API attribute, the '.' stays
// part of the key). Control words and bare words report ok false.
func ParseAttribute(w Word) (Attribute, bool) {
	s := string(w)
	switch {
	case strings.HasPrefix(s, "="):
		key, value, found := strings.Cut(s[1:], "=")
		if !found || key == "" {
			return Attribute{}, false
		}
		return Attribute{Key: key, Value: value}, true
	case strings.HasPrefix(s, "."):
		key, value, found := strings.Cut(s, "=")
		if !found || key == "." {
			return Attribute{}, false
		}
		return Attribute{Key: key, Value: value}, true
	default:
		return Attribute{}, false
	}
}

// attributeWord renders an attribute as a request word. Keys beginning
// with '.' or '=' are emitted verbatim as "key=value"; every other key
// gets the "=key=value" data-attribute form.
func attributeWord(a Attribute) Word {
	if strings.HasPrefix(a.Key, ".") || strings.HasPrefix(a.Key, "=") {
		return Word(a.Key + "=" + a.Value)
	}
	return Word("=" + a.Key + "=" + a.Value)
}
