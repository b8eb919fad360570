// Package rpcserver exposes a relhost-backed database over a
// length-prefixed JSON request/response protocol on a TCP socket: every
// message is a 4-byte big-endian length followed by that many bytes of
// JSON.
package rpcserver

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// maxFrameBytes bounds a single message's declared length, independent of
// ServerConfig.MaxMessageBytes, as a hard backstop against a corrupted or
// hostile length prefix.
const maxFrameBytes = 1 << 30

// Request is one query submitted over the wire.
type Request struct {
	SQL   string `json:"sql"`
	Token string `json:"token,omitempty"`
}

// Response is the envelope returned for every Request, success or not.
type Response struct {
	Success  bool     `json:"success"`
	Error    string   `json:"error,omitempty"`
	Columns  []string `json:"columns,omitempty"`
	Rows     [][]any  `json:"rows,omitempty"`
	RowCount int      `json:"row_count"`
}

// Ok builds a successful Response.
func Ok(columns []string, rows [][]any) Response {
	return Response{Success: true, Columns: columns, Rows: rows, RowCount: len(rows)}
}

// Fail builds a failed Response.
func Fail(msg string) Response {
	return Response{Success: false, Error: msg}
}

func writeFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("rpcserver: write length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("rpcserver: write payload: %w", err)
	}
	return nil
}

func readFrame(r io.Reader, maxBytes int) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameBytes || (maxBytes > 0 && int(n) > maxBytes) {
		return nil, fmt.Errorf("rpcserver: frame of %d bytes exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("rpcserver: read payload: %w", err)
	}
	return buf, nil
}

func writeJSON(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("rpcserver: marshal: %w", err)
	}
	return writeFrame(w, payload)
}

func readJSON(r io.Reader, maxBytes int, v any) error {
	payload, err := readFrame(r, maxBytes)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("rpcserver: unmarshal: %w", err)
	}
	return nil
}
