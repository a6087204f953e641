// Package transport implements irccd's control-socket protocol: length
// -delimited JSON framing over Unix, TCP or TCP+TLS listeners, the
// auth handshake, and the per-client command/broadcast queue
// (spec.md §4.6).
package transport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

const delimiter = "\r\n\r\n"

// Reader frames an input stream on the four-byte \r\n\r\n delimiter
// and decodes each record as a single JSON object, tolerating
// arbitrary extra delimiters between records (spec.md §8, "Framing").
type Reader struct {
	br  *bufio.Reader
	buf bytes.Buffer
}

// NewReader wraps r for delimited JSON-object reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// ReadObject blocks for the next complete record and decodes it into
// a generic field map. A record that isn't a JSON object is a protocol
// error (spec.md §4.6, "non-object records produce a protocol error").
func (r *Reader) ReadObject() (map[string]interface{}, error) {
	for {
		if rec, ok := r.takeRecord(); ok {
			if len(rec) == 0 {
				continue // tolerate extra delimiters between records
			}
			var obj map[string]interface{}
			if err := json.Unmarshal(rec, &obj); err != nil {
				return nil, fmt.Errorf("corrupt_message: %w", err)
			}
			return obj, nil
		}
		chunk := make([]byte, 4096)
		n, err := r.br.Read(chunk)
		if n > 0 {
			r.buf.Write(chunk[:n])
		}
		if err != nil {
			return nil, err
		}
	}
}

func (r *Reader) takeRecord() ([]byte, bool) {
	data := r.buf.Bytes()
	idx := bytes.Index(data, []byte(delimiter))
	if idx < 0 {
		return nil, false
	}
	rec := make([]byte, idx)
	copy(rec, data[:idx])
	r.buf.Next(idx + len(delimiter))
	return rec, true
}

// WriteObject serializes v as one JSON object terminated by the
// framing delimiter.
func WriteObject(w io.Writer, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(body, []byte(delimiter)...))
	return err
}
