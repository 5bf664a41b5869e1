package singleinstance

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	residentHost = "127.0.0.1"

	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
	modePrefix   = "MODE "

	statusCommitted = "COMMITTED\n"
	statusCancelled = "CANCELLED\n"
	statusError     = "ERROR\n"
)

// DetectResident scans the port range and returns the port of a resident
// that answers PING.
func DetectResident(ctx context.Context) (int, bool) {
	timeout := 300 * time.Millisecond
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < timeout {
			timeout = d
		}
	}
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return 0, false
		}
		if ping(residentAddr(port), timeout) {
			return port, true
		}
	}
	return 0, false
}

func residentAddr(port int) string {
	return net.JoinHostPort(residentHost, strconv.Itoa(port))
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(pingRequest); err != nil {
		return false
	}
	if err := w.Flush(); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}

func modeLine(name string) string { return modePrefix + name + "\n" }

func parseModeLine(line string) (string, bool) {
	if !strings.HasPrefix(line, modePrefix) || !strings.HasSuffix(line, "\n") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, modePrefix)), true
}
