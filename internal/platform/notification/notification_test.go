package notification

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogSender_WritesMessage(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(zerolog.New(&buf))

	if err := sender.SendSMS(context.Background(), "user-1", "Hi, it's Carepulse."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "user-1") || !strings.Contains(out, "Carepulse") {
		t.Errorf("unexpected log output: %s", out)
	}
}
