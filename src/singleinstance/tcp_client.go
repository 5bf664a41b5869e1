package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"anemone/src/mode"
)

type tcpClient struct{}

func newTCPClient() *tcpClient { return &tcpClient{} }

func (c *tcpClient) TryRun(ctx context.Context, m mode.Mode) (bool, Reply, error) {
	port, ok := DetectResident(ctx)
	if !ok {
		return false, Reply{}, nil
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", residentAddr(port))
	if err != nil {
		return false, Reply{}, nil
	}
	defer conn.Close()

	// The resident only answers once the overlay closes.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(modeLine(m.String())); err != nil {
		return true, Reply{}, err
	}
	if err := w.Flush(); err != nil {
		return true, Reply{}, err
	}

	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return true, Reply{}, ctxErr
		}
		return true, Reply{}, fmt.Errorf("read resident status: %w", err)
	}
	body, _ := io.ReadAll(br)

	switch status {
	case statusCommitted:
		return true, Reply{Committed: true, Text: string(body)}, nil
	case statusCancelled:
		return true, Reply{}, nil
	case statusError:
		return true, Reply{}, errors.New(string(body))
	default:
		return true, Reply{}, fmt.Errorf("unexpected resident status %q", status)
	}
}
