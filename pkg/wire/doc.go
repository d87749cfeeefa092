// Package wire implements the RouterOS API wire format: length-prefixed
// words grouped into sentences.
//
// A word is an opaque byte string. A sentence is an ordered sequence of
// words terminated on the wire by a zero-length word. The first word of
// a device-originated sentence is a control word (!re, !done, !trap,
// !fatal) that determines the sentence kind; the remaining words are
// attributes ("=key=value") and API attributes (".tag=N").
//
// # Length Prefixes
//
// Word lengths use a variable-width prefix whose leading bits encode the
// width, similar to UTF-8:
//
//	< 0x80        1 byte   0xxxxxxx
//	< 0x4000      2 bytes  10xxxxxx ...
//	< 0x200000    3 bytes  110xxxxx ...
//	< 0x10000000  4 bytes  1110xxxx ...
//	otherwise     5 bytes  0xF0 + 4-byte big-endian length
//
// First bytes 0xF1 through 0xFF are reserved and rejected.
//
// # Encoding and Decoding
//
// Encoding is a pure function from sentence to bytes (AppendSentence,
// EncodeSentence). Decoding is incremental and free of I/O: a Decoder
// is fed raw byte chunks as they arrive from the transport and yields
// complete sentences, buffering partial prefixes and payloads across
// feeds. Decode limits guard against a corrupted stream demanding
// unbounded allocation.
package wire
