package wire

import (
	"bytes"
	"strconv"
	"strings"
)

// Kind classifies a sentence by its first control word.
type Kind uint8

const (
	// KindUnknown marks a sentence whose first word is no known control word.
	KindUnknown Kind = iota

	// KindReply is a data-bearing continuation sentence (!re).
	KindReply

	// KindDone marks the completion of an exchange (!done).
	KindDone

	// KindTrap is a device-reported error failing a single exchange (!trap).
	KindTrap

	// KindFatal is a device-reported error terminating the whole connection (!fatal).
	KindFatal
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindReply:
		return "REPLY"
	case KindDone:
		return "DONE"
	case KindTrap:
		return "TRAP"
	case KindFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Sentence is one complete protocol message: an ordered sequence of
// words, terminated on the wire by a zero-length word.
type Sentence struct {
	words []Word
}

// NewSentence builds a sentence from the given words.
func NewSentence(words ...Word) Sentence {
	return Sentence{words: words}
}

// NewCommand assembles a tagged request sentence: the command path,
// the tag attribute, then the attribute pairs in order.
func NewCommand(command string, tag uint16, attrs ...Attribute) Sentence {
	words := make([]Word, 0, len(attrs)+2)
	words = append(words, Word(command))
	words = append(words, Word(TagKey+"="+strconv.FormatUint(uint64(tag), 10)))
	for _, a := range attrs {
		words = append(words, attributeWord(a))
	}
	return Sentence{words: words}
}

// Words returns the sentence's words in order.
func (s Sentence) Words() []Word {
	return s.words
}

// Len returns the number of words.
func (s Sentence) Len() int {
	return len(s.words)
}

// Kind derives the sentence kind from its first word.
func (s Sentence) Kind() Kind {
	if len(s.words) == 0 {
		return KindUnknown
	}
	switch string(s.words[0]) {
	case WordReply:
		return KindReply
	case WordDone:
		return KindDone
	case WordTrap:
		return KindTrap
	case WordFatal:
		return KindFatal
	default:
		return KindUnknown
	}
}

// Tag extracts the correlation tag attribute. A sentence carries at
// most one; ok is false when no tag word is present or its value does
// not parse as a 16-bit unsigned integer.
func (s Sentence) Tag() (uint16, bool) {
	for _, w := range s.words {
		v, found := strings.CutPrefix(string(w), TagKey+"=")
		if !found {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return 0, false
		}
		return uint16(n), true
	}
	return 0, false
}

// Attributes returns the parsed attribute pairs in word order. Control
// words and the tag attribute are skipped.
func (s Sentence) Attributes() []Attribute {
	var attrs []Attribute
	for _, w := range s.words {
		a, ok := ParseAttribute(w)
		if !ok || a.Key == TagKey {
			continue
		}
		attrs = append(attrs, a)
	}
	return attrs
}

// Attribute returns the value of the first attribute with the given key.
func (s Sentence) Attribute(key string) (string, bool) {
	for _, w := range s.words {
		a, ok := ParseAttribute(w)
		if ok && a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Equal reports whether two sentences carry identical words.
func (s Sentence) Equal(o Sentence) bool {
	if len(s.words) != len(o.words) {
		return false
	}
	for i := range s.words {
		if !bytes.Equal(s.words[i], o.words[i]) {
			return false
		}
	}
	return true
}

// String renders the sentence for diagnostics, words joined by spaces.
func (s Sentence) String() string {
	parts := make([]string, len(s.words))
	for i, w := range s.words {
		parts[i] = string(w)
	}
	return strings.Join(parts, " ")
}
