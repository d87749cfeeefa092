package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Codec constants.
const (
	// DefaultMaxWordLength is the default decode ceiling for a single
	// word payload (4 MB).
	DefaultMaxWordLength = 4 * 1024 * 1024

	// DefaultMaxSentenceWords is the default decode ceiling on the
	// number of words in one sentence.
	DefaultMaxSentenceWords = 1024
)

// ErrIncomplete signals that the buffered bytes do not yet hold a
// complete sentence; feed more input and retry.
var ErrIncomplete = errors.New("incomplete sentence")

// Framing errors. The byte stream cannot be re-synchronized after one.
var (
	// ErrWordTooLong indicates a length prefix above the configured ceiling.
	ErrWordTooLong = errors.New("word too long")

	// ErrSentenceTooLong indicates a sentence with too many words.
	ErrSentenceTooLong = errors.New("sentence has too many words")

	// ErrReservedPrefix indicates a length prefix starting with a
	// reserved byte (0xF1-0xFF).
	ErrReservedPrefix = errors.New("reserved length prefix byte")
)

// Limits bounds decoder memory use against corrupted or hostile streams.
type Limits struct {
	// MaxWordLength is the largest accepted word payload in bytes.
	MaxWordLength uint32

	// MaxSentenceWords is the largest accepted word count per sentence.
	MaxSentenceWords int
}

// DefaultLimits returns the default decode limits.
func DefaultLimits() Limits {
	return Limits{
		MaxWordLength:    DefaultMaxWordLength,
		MaxSentenceWords: DefaultMaxSentenceWords,
	}
}

// AppendLength appends the variable-width length prefix for n to dst.
func AppendLength(dst []byte, n uint32) []byte {
	switch {
	case n < 0x80:
		return append(dst, byte(n))
	case n < 0x4000:
		return append(dst, byte(n>>8)|0x80, byte(n))
	case n < 0x200000:
		return append(dst, byte(n>>16)|0xC0, byte(n>>8), byte(n))
	case n < 0x10000000:
		return append(dst, byte(n>>24)|0xE0, byte(n>>16), byte(n>>8), byte(n))
	default:
		return append(dst, 0xF0, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
}

// AppendWord appends the length-prefixed word to dst.
func AppendWord(dst []byte, w Word) []byte {
	dst = AppendLength(dst, uint32(len(w)))
	return append(dst, w...)
}

// AppendSentence appends the full wire form of s to dst: every word
// length-prefixed, then the zero-length terminator.
func AppendSentence(dst []byte, s Sentence) []byte {
	for _, w := range s.words {
		dst = AppendWord(dst, w)
	}
	return append(dst, 0x00)
}

// EncodeSentence returns the wire form of s.
func EncodeSentence(s Sentence) []byte {
	return AppendSentence(nil, s)
}

// decodeLength reads one length prefix from the front of buf, returning
// the payload length and the prefix width in bytes.
func decodeLength(buf []byte) (uint32, int, error) {
	if len(buf) == 0 {
		return 0, 0, ErrIncomplete
	}
	b := buf[0]
	switch {
	case b < 0x80:
		return uint32(b), 1, nil
	case b&0xC0 == 0x80:
		if len(buf) < 2 {
			return 0, 0, ErrIncomplete
		}
		return uint32(b&0x3F)<<8 | uint32(buf[1]), 2, nil
	case b&0xE0 == 0xC0:
		if len(buf) < 3 {
			return 0, 0, ErrIncomplete
		}
		return uint32(b&0x1F)<<16 | uint32(buf[1])<<8 | uint32(buf[2]), 3, nil
	case b&0xF0 == 0xE0:
		if len(buf) < 4 {
			return 0, 0, ErrIncomplete
		}
		return uint32(b&0x0F)<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), 4, nil
	case b == 0xF0:
		if len(buf) < 5 {
			return 0, 0, ErrIncomplete
		}
		return binary.BigEndian.Uint32(buf[1:5]), 5, nil
	default:
		return 0, 0, fmt.Errorf("%w: 0x%02X", ErrReservedPrefix, b)
	}
}

// Decoder incrementally decodes sentences from a byte stream. Feed
// appends raw bytes as they arrive from the transport; Next yields
// completed sentences. Partial length prefixes and word payloads are
// buffered across calls, so reads need not align with any protocol
// boundary.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	limits Limits
	buf    []byte
	off    int
	words  []Word
}

// NewDecoder creates a decoder with DefaultLimits.
func NewDecoder() *Decoder {
	return NewDecoderWithLimits(DefaultLimits())
}

// NewDecoderWithLimits creates a decoder with custom limits. Zero
// fields fall back to their defaults.
func NewDecoderWithLimits(limits Limits) *Decoder {
	if limits.MaxWordLength == 0 {
		limits.MaxWordLength = DefaultMaxWordLength
	}
	if limits.MaxSentenceWords == 0 {
		limits.MaxSentenceWords = DefaultMaxSentenceWords
	}
	return &Decoder{limits: limits}
}

// Feed appends raw bytes to the decode buffer.
func (d *Decoder) Feed(p []byte) {
	if d.off > 0 {
		n := copy(d.buf, d.buf[d.off:])
		d.buf = d.buf[:n]
		d.off = 0
	}
	d.buf = append(d.buf, p...)
}

// Next decodes the next complete sentence from buffered bytes. It
// returns ErrIncomplete when more input is needed. Any other error is
// a framing error and permanent: the stream has lost word alignment
// and the connection must be abandoned.
func (d *Decoder) Next() (Sentence, error) {
	for {
		length, width, err := decodeLength(d.buf[d.off:])
		if err != nil {
			return Sentence{}, err
		}
		if length > d.limits.MaxWordLength {
			return Sentence{}, fmt.Errorf("%w: %d > %d", ErrWordTooLong, length, d.limits.MaxWordLength)
		}
		if len(d.buf)-d.off < width+int(length) {
			return Sentence{}, ErrIncomplete
		}
		payload := d.buf[d.off+width : d.off+width+int(length)]
		d.off += width + int(length)

		if length == 0 {
			s := Sentence{words: d.words}
			d.words = nil
			return s, nil
		}
		if len(d.words) >= d.limits.MaxSentenceWords {
			return Sentence{}, fmt.Errorf("%w: more than %d", ErrSentenceTooLong, d.limits.MaxSentenceWords)
		}
		d.words = append(d.words, Word(append([]byte(nil), payload...)))
	}
}
