package rpcserver

import (
	"fmt"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/relhost/relhost/dbutil"
)

// ServerConfig controls Server's listen address and wire limits.
type ServerConfig struct {
	Port        int
	BindAddress string

	// AuthToken, if non-empty, must match every Request.Token.
	AuthToken string
	// AllowInsecureNoAuth permits binding a non-loopback address with no
	// AuthToken set. Defaults to false: Serve refuses that combination.
	AllowInsecureNoAuth bool

	MaxMessageBytes int
	Verbose         bool
}

// DefaultServerConfig mirrors the defaults of the protocol this server
// implements: loopback-only, a 10 MiB message cap, verbose logging on.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            13337,
		BindAddress:     "127.0.0.1",
		MaxMessageBytes: 10 * 1024 * 1024,
		Verbose:         true,
	}
}

// Server accepts connections and dispatches each Request to db.
type Server struct {
	cfg ServerConfig
	db  *dbutil.DB
	ln  net.Listener
}

// New creates a Server bound to db. Call Serve to start accepting
// connections.
func New(cfg ServerConfig, db *dbutil.DB) (*Server, error) {
	if !isLoopback(cfg.BindAddress) && cfg.AuthToken == "" && !cfg.AllowInsecureNoAuth {
		return nil, fmt.Errorf("rpcserver: refusing to bind %s with no auth token (set AllowInsecureNoAuth to override)", cfg.BindAddress)
	}
	return &Server{cfg: cfg, db: db}, nil
}

func isLoopback(addr string) bool {
	if addr == "" || addr == "localhost" {
		return true
	}
	ip := net.ParseIP(addr)
	return ip != nil && ip.IsLoopback()
}

// Serve listens and blocks, handling connections until the listener is
// closed or Accept returns a permanent error.
func (s *Server) Serve() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpcserver: listen %s: %w", addr, err)
	}
	s.ln = ln
	if s.cfg.Verbose {
		logrus.WithField("addr", addr).Info("rpcserver: listening")
	}
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("rpcserver: accept: %w", err)
		}
		go s.handle(conn)
	}
}

// Close stops Serve's accept loop.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	for {
		var req Request
		if err := readJSON(conn, s.cfg.MaxMessageBytes, &req); err != nil {
			return
		}
		resp := s.dispatch(req)
		if err := writeJSON(conn, resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	if s.cfg.AuthToken != "" && req.Token != s.cfg.AuthToken {
		return Fail("unauthorized")
	}
	result, err := s.db.Query(req.SQL)
	if err != nil {
		if _, execErr := s.db.Exec(req.SQL); execErr == nil {
			return Ok(nil, nil)
		}
		if s.cfg.Verbose {
			logrus.WithError(err).WithField("sql", req.SQL).Warn("rpcserver: query failed")
		}
		return Fail(err.Error())
	}
	return Ok(result.Columns, result.Rows)
}
