package mailer

import (
	"context"
	"strings"
	"testing"
)

func TestBuildRaw_MultipartAlternative(t *testing.T) {
	raw := string(buildRaw(Message{
		To:      []string{"owner@example.com", "jane@example.com"},
		From:    "shop@example.com",
		Subject: "New Order Received",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
	}))

	for _, want := range []string{
		"From: shop@example.com\r\n",
		"To: owner@example.com, jane@example.com\r\n",
		"Subject: New Order Received\r\n",
		"multipart/alternative",
		"--" + altBoundary + "\r\n",
		"--" + altBoundary + "--\r\n",
		"text/plain",
		"text/html",
		"plain body",
		"<p>html body</p>",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("raw message missing %q:\n%s", want, raw)
		}
	}
}

func TestBuildRaw_PlainTextOnly(t *testing.T) {
	raw := string(buildRaw(Message{
		To:      []string{"owner@example.com"},
		From:    "shop@example.com",
		Subject: "hello",
		Text:    "just text",
	}))

	if strings.Contains(raw, "multipart/alternative") {
		t.Fatal("single-body message must not be multipart")
	}
	if !strings.Contains(raw, "text/plain") || !strings.Contains(raw, "just text") {
		t.Fatalf("plain body missing:\n%s", raw)
	}
}

func TestSend_RequiresConfiguration(t *testing.T) {
	s := &SMTP{}
	err := s.Send(context.Background(), Message{
		To:   []string{"owner@example.com"},
		From: "shop@example.com",
		Text: "x",
	})
	if err == nil {
		t.Fatal("expected error without SMTP host")
	}

	s = NewSMTP("smtp.example.com", "465", "user", "pass", true)
	err = s.Send(context.Background(), Message{Text: "x"})
	if err == nil {
		t.Fatal("expected error without sender and recipient")
	}
}
