package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"anemone/src/mode"
)

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	mu        sync.Mutex
	lis       net.Listener
	incoming  chan *tcpConn
	port      int
	closeOnce sync.Once
	closed    chan struct{}
}

func newTCPServer() *tcpServer {
	return &tcpServer{incoming: make(chan *tcpConn, 4), closed: make(chan struct{})}
}

// Start binds only the first port of the range. If it is occupied, Start fails.
func (s *tcpServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}
	start, _ := getPortRange()
	addr := residentAddr(start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("singleinstance: bind %s: %w", addr, err)
	}
	s.lis = lis
	s.port = start
	log.Printf("singleinstance: listening on %s", addr)
	go s.acceptLoop(ctx, lis)
	return nil
}

func (s *tcpServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *tcpServer) acceptLoop(ctx context.Context, lis net.Listener) {
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		go s.serveConn(ctx, c)
	}
}

// serveConn runs one handshake. A slow client only holds up itself.
func (s *tcpServer) serveConn(ctx context.Context, c net.Conn) {
	tc, ok := s.handshake(c)
	if !ok {
		return
	}
	select {
	case s.incoming <- tc:
	case <-ctx.Done():
		_ = c.Close()
	case <-s.closed:
		_ = c.Close()
	}
}

// handshake answers PING directly and parses a MODE request. It reports
// whether c carries a request that needs a reply.
func (s *tcpServer) handshake(c net.Conn) (*tcpConn, bool) {
	remote := c.RemoteAddr().String()
	_ = c.SetDeadline(time.Now().Add(3 * time.Second))
	br := bufio.NewReader(c)
	bw := bufio.NewWriter(c)
	line, _ := br.ReadString('\n')

	if line == pingRequest {
		_, _ = bw.WriteString(pongResponse)
		_ = bw.Flush()
		_ = c.Close()
		return nil, false
	}

	tc := &tcpConn{c: c, w: bw}
	name, ok := parseModeLine(line)
	if !ok {
		log.Printf("singleinstance: malformed request from %s: %q", remote, line)
		_ = tc.RespondError("malformed request")
		_ = c.Close()
		return nil, false
	}
	m, err := mode.Parse(name)
	if err != nil {
		_ = tc.RespondError(err.Error())
		_ = c.Close()
		return nil, false
	}

	// The reply waits for the overlay to close, which has no deadline.
	_ = c.SetDeadline(time.Time{})
	tc.req = Request{Mode: m}
	log.Printf("singleinstance: request from %s mode=%s", remote, m)
	return tc, true
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.closed:
		return nil, net.ErrClosed
	case tc := <-s.incoming:
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.mu.Lock()
		if s.lis != nil {
			_ = s.lis.Close()
		}
		s.mu.Unlock()
	})
	return nil
}

type tcpConn struct {
	c   net.Conn
	req Request
	w   *bufio.Writer
}

func (tc *tcpConn) Request() Request { return tc.req }

func (tc *tcpConn) RespondCommitted(text string) error { return tc.write(statusCommitted + text) }
func (tc *tcpConn) RespondCancelled() error            { return tc.write(statusCancelled) }
func (tc *tcpConn) RespondError(msg string) error      { return tc.write(statusError + msg) }

func (tc *tcpConn) write(s string) error {
	if _, err := tc.w.WriteString(s); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) Close() error { return tc.c.Close() }
