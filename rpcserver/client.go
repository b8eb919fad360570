package rpcserver

import (
	"fmt"
	"net"
	"time"
)

// Client is a connection to a Server.
type Client struct {
	conn      net.Conn
	maxBytes  int
	authToken string
}

// Dial connects to addr (host:port). maxMessageBytes bounds the response
// frame size this client will accept; pass 0 to use the protocol default.
func Dial(addr, authToken string, maxMessageBytes int) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("rpcserver: dial %s: %w", addr, err)
	}
	if maxMessageBytes == 0 {
		maxMessageBytes = DefaultServerConfig().MaxMessageBytes
	}
	return &Client{conn: conn, maxBytes: maxMessageBytes, authToken: authToken}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// Query sends sql and returns the decoded Response.
func (c *Client) Query(sql string) (Response, error) {
	req := Request{SQL: sql, Token: c.authToken}
	if err := writeJSON(c.conn, req); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := readJSON(c.conn, c.maxBytes, &resp); err != nil {
		return Response{}, err
	}
	if !resp.Success {
		return resp, fmt.Errorf("rpcserver: %s", resp.Error)
	}
	return resp, nil
}
