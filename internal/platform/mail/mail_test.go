package mail

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internship_backend/internal/platform/config"
	"internship_backend/internal/platform/logging"
)

// fakeSMTP は最小限のSMTPサーバーで、受け取ったDATAを返します。
func fakeSMTP(t *testing.T) (host string, port int, received <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	ch := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }

		write("220 fake ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				write("250 fake")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				write("250 OK")
			case cmd == "DATA":
				write("354 go ahead")
				var data strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					data.WriteString(l)
				}
				ch <- data.String()
				write("250 queued")
			case cmd == "QUIT":
				write("221 bye")
				return
			default:
				write("502 unknown")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port, ch
}

func TestSMTPSender_Send(t *testing.T) {
	t.Parallel()

	host, port, received := fakeSMTP(t)
	s := NewSMTPSender(config.SMTPSettings{Host: host, Port: port, From: "noreply@portal.test", FromName: "Portal"})

	msg, err := VerificationMessage("asha@college.edu", "Asha", "http://localhost:5173/verify?token=abc", 24*time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Send(ctx, msg))

	select {
	case data := <-received:
		assert.Contains(t, data, "To: asha@college.edu\r\n")
		assert.Contains(t, data, "Subject: Verify your email address")
		assert.Contains(t, data, "multipart/alternative")
		assert.Contains(t, data, "http://localhost:5173/verify?token=abc")
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}
}

func TestSMTPSender_ConnectError(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	s := NewSMTPSender(config.SMTPSettings{Host: "127.0.0.1", Port: port, From: "a@b.c"})
	err = s.Send(context.Background(), Message{To: "x@y.z", Subject: "s", Text: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
}

func TestSMTPSender_BuildPlain(t *testing.T) {
	t.Parallel()

	s := NewSMTPSender(config.SMTPSettings{Host: "smtp.test", Port: 25, From: "noreply@portal.test"})
	raw := string(s.build(Message{To: "a@b.c", Subject: "Hi", Text: "line1\nline2"}))

	assert.Contains(t, raw, "From: Internship Portal <noreply@portal.test>\r\n")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8\r\n\r\nline1\r\nline2")
	assert.NotContains(t, raw, "multipart")
}

func TestVerificationMessage_EscapesHTML(t *testing.T) {
	t.Parallel()

	msg, err := VerificationMessage("a@b.c", "<script>", "http://x/verify?token=1&a=b", time.Hour)
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "<script>")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.Text, "1h0m0s")
}

func TestLogSender_MasksRecipient(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewLogSender(logging.New(&buf, config.LogSettings{Format: "json"}))

	require.NoError(t, s.Send(context.Background(), Message{To: "student@college.edu", Subject: "Verify", Text: "link"}))

	assert.Contains(t, buf.String(), "stu***@college.edu")
	assert.NotContains(t, buf.String(), "student@college.edu")
}
