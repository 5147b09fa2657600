package bstore

import (
	"fmt"
	"strconv"
)

// fieldWidth is the fixed width, in ASCII decimal digits, of every numeric
// field in the on-disk format: the header's root_offset, a record's
// record_size, and a child edge's offset. A single field caps at
// 10^fieldWidth - 1 bytes.
const fieldWidth = 19

// headerSize is the size, in bytes, of the file header: a fieldWidth-digit
// root_offset followed by a single newline.
const headerSize = fieldWidth + 1

// newline is the framing sentinel appended after a header or record body.
// Decoders must never scan for it; it exists only to aid human inspection
// of the file with a text tool.
const newline = '\n'

// encodeFixedWidth renders n as fieldWidth ASCII decimal digits,
// zero-padded on the left. It fails if n does not fit in the field.
func encodeFixedWidth(n int64) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("bstore: negative offset %d cannot be encoded", n)
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > fieldWidth {
		return nil, fmt.Errorf("bstore: value %d exceeds %d-digit field width", n, fieldWidth)
	}
	out := make([]byte, fieldWidth)
	for i := range out {
		out[i] = '0'
	}
	copy(out[fieldWidth-len(s):], s)
	return out, nil
}

// decodeFixedWidth parses a fieldWidth-byte zero-padded ASCII decimal
// field written by encodeFixedWidth.
func decodeFixedWidth(b []byte) (int64, error) {
	if len(b) != fieldWidth {
		return 0, ErrInvalidRecordSize
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, ErrInvalidRecordSize
		}
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, ErrInvalidRecordSize
	}
	return n, nil
}

// encodeHeader renders a file header: root_offset followed by a newline.
func encodeHeader(rootOffset int64) ([]byte, error) {
	field, err := encodeFixedWidth(rootOffset)
	if err != nil {
		return nil, err
	}
	return append(field, newline), nil
}

// decodeHeader parses a headerSize-byte file header.
func decodeHeader(b []byte) (rootOffset int64, err error) {
	if len(b) != headerSize {
		return 0, ErrInvalidRecordSize
	}
	if b[fieldWidth] != newline {
		return 0, ErrInvalidRecordSize
	}
	return decodeFixedWidth(b[:fieldWidth])
}

// frameRecord renders a node body as a self-delimiting record:
// <record_size><body><newline>.
func frameRecord(body []byte) ([]byte, error) {
	sizeField, err := encodeFixedWidth(int64(len(body)))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(sizeField)+len(body)+1)
	out = append(out, sizeField...)
	out = append(out, body...)
	out = append(out, newline)
	return out, nil
}

// encodeOffset renders a child edge as a fixed-width offset field, the
// form in which children are persisted inside a node body.
func encodeOffset(offset int64) ([]byte, error) {
	return encodeFixedWidth(offset)
}

// decodeOffset parses a fixed-width offset field back into an int64.
func decodeOffset(b []byte) (int64, error) {
	return decodeFixedWidth(b)
}
