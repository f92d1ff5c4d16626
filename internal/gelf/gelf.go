// Package gelf ships log output to a GELF UDP endpoint (e.g. Graylog).
// The writer is handed to zap as an extra sink; each write is one zap JSON
// line, re-wrapped as one GELF message.
package gelf

import (
	"net"
	"os"
	"time"

	"github.com/goccy/go-json"
)

// Writer sends GELF messages over UDP. It implements zapcore.WriteSyncer.
type Writer struct {
	conn     net.Conn
	hostname string
}

// New creates a GELF UDP writer connected to addr (e.g. "127.0.0.1:12201").
func New(addr string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "crimsond"
	}
	return &Writer{conn: conn, hostname: hostname}, nil
}

// GELF severity levels (syslog numbering).
const (
	levelError   = 3
	levelWarning = 4
	levelInfo    = 6
	levelDebug   = 7
)

var zapLevels = map[string]int{
	"debug":  levelDebug,
	"info":   levelInfo,
	"warn":   levelWarning,
	"error":  levelError,
	"dpanic": levelError,
	"panic":  levelError,
	"fatal":  levelError,
}

// Write implements io.Writer. Each call wraps one zap JSON line.
func (w *Writer) Write(p []byte) (int, error) {
	var entry map[string]any
	short := string(p)
	level := levelInfo
	if err := json.Unmarshal(p, &entry); err == nil {
		if msg, ok := entry["msg"].(string); ok {
			short = msg
		}
		if lv, ok := entry["level"].(string); ok {
			if mapped, ok := zapLevels[lv]; ok {
				level = mapped
			}
		}
	}

	msg := map[string]any{
		"version":       "1.1",
		"host":          w.hostname,
		"short_message": short,
		"full_message":  string(p),
		"timestamp":     float64(time.Now().UnixNano()) / 1e9,
		"level":         level,
		"_service":      "crimsond",
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return len(p), nil
	}
	if _, err := w.conn.Write(payload); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Sync implements zapcore.WriteSyncer. UDP has nothing to flush.
func (w *Writer) Sync() error { return nil }

// Close closes the UDP connection.
func (w *Writer) Close() error { return w.conn.Close() }
