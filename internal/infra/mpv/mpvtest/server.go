// Package mpvtest provides a fake mpv IPC endpoint for tests.
package mpvtest

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"sync"
	"testing"
)

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// Server accepts a single IPC connection and answers every command with
// success. Received commands are recorded for assertions, and events can be
// pushed to the connected client.
type Server struct {
	t  *testing.T
	ln net.Listener

	SocketPath string

	connReady chan struct{}

	mu       sync.Mutex
	conn     net.Conn
	commands [][]any
	position float64
}

func NewServer(t *testing.T) *Server {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "mpv.sock")
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen on %s: %v", socketPath, err)
	}

	s := &Server{
		t:          t,
		ln:         ln,
		SocketPath: socketPath,
		connReady:  make(chan struct{}),
	}
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

func (s *Server) serve() {
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	close(s.connReady)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}

		s.mu.Lock()
		s.commands = append(s.commands, req.Command)
		pos := s.position
		s.mu.Unlock()

		reply := map[string]any{"error": "success", "request_id": req.RequestID}
		if len(req.Command) == 2 && req.Command[0] == "get_property" && req.Command[1] == "time-pos" {
			reply["data"] = pos
		}
		s.write(reply)
	}
}

func (s *Server) write(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.t.Errorf("marshal reply: %v", err)
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		_, _ = conn.Write(data)
	}
}

// SetPosition sets the value returned for get_property time-pos.
func (s *Server) SetPosition(pos float64) {
	s.mu.Lock()
	s.position = pos
	s.mu.Unlock()
}

// EmitPosition pushes a time-pos property-change event.
func (s *Server) EmitPosition(pos float64) {
	<-s.connReady
	s.write(map[string]any{
		"event": "property-change",
		"id":    1,
		"name":  "time-pos",
		"data":  pos,
	})
}

// EmitEOF pushes an eof-reached property-change event.
func (s *Server) EmitEOF() {
	<-s.connReady
	s.write(map[string]any{
		"event": "property-change",
		"id":    2,
		"name":  "eof-reached",
		"data":  true,
	})
}

// Commands returns the commands received so far.
func (s *Server) Commands() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.commands))
	copy(out, s.commands)
	return out
}

// CommandNames returns just the first element of each received command.
func (s *Server) CommandNames() []string {
	var names []string
	for _, c := range s.Commands() {
		if len(c) > 0 {
			if name, ok := c[0].(string); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

func (s *Server) Close() {
	s.ln.Close()
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()
}
