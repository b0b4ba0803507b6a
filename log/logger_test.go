package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogger_SessionContextFields(t *testing.T) {
	meta := NewSessionMeta("native", "http://daq.local:8080")
	var buf bytes.Buffer
	logger := NewLogger(meta).WithOutput(&buf)

	logger.Info("view changed", map[string]any{"dataset": "/run/p0"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v\noutput: %s", err, buf.String())
	}

	if entry["session_id"] != meta.SessionID {
		t.Errorf("session_id = %v, want %v", entry["session_id"], meta.SessionID)
	}
	if entry["target"] != "native" {
		t.Errorf("target = %v, want native", entry["target"])
	}
	if entry["server_url"] != "http://daq.local:8080" {
		t.Errorf("server_url = %v", entry["server_url"])
	}
	if entry["message"] != "view changed" {
		t.Errorf("message = %v", entry["message"])
	}
}

func TestLogger_OmitsEmptyServerURL(t *testing.T) {
	meta := NewSessionMeta("wasm", "")
	var buf bytes.Buffer
	NewLogger(meta).WithOutput(&buf).Warn("no server configured", nil)

	if strings.Contains(buf.String(), "server_url") {
		t.Fatalf("server_url present for empty URL: %s", buf.String())
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	l.Debug("dropped", nil)
	l.Sugar().Infof("dropped %d", 1)
}
