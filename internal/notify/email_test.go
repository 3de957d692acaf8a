package notify

import (
	"errors"
	"net"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		config   SMTPConfig
		expected bool
	}{
		{name: "empty config", config: SMTPConfig{}, expected: false},
		{name: "missing host", config: SMTPConfig{Port: "587", From: "a@example.com"}, expected: false},
		{name: "missing from", config: SMTPConfig{Host: "smtp.example.com", Port: "587"}, expected: false},
		{name: "fully configured", config: SMTPConfig{Host: "smtp.example.com", Port: "587", From: "a@example.com"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewSMTPMailer(tt.config).IsConfigured())
		})
	}
}

func TestSendBuildsMessage(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: "587", From: "dash@example.com"})

	var gotAddr string
	var gotTo []string
	var gotMsg string
	mailer.sendMail = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	require.NoError(t, mailer.Send([]string{"approver@example.com"}, "New Purchase Request", "Item: Laptop"))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"approver@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: New Purchase Request\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\nItem: Laptop")
}

func TestSendUnconfigured(t *testing.T) {
	err := NewSMTPMailer(SMTPConfig{}).Send([]string{"x@example.com"}, "s", "b")
	assert.Error(t, err)
}

func TestSendPropagatesRelayError(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{Host: "h", Port: "25", From: "f@example.com"})
	mailer.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("relay down")
	}

	assert.EqualError(t, mailer.Send([]string{"x@example.com"}, "s", "b"), "relay down")
}

func TestSendTimesOutOnSilentRelay(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()
	defer func() {
		select {
		case conn := <-accepted:
			conn.Close()
		default:
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	mailer := NewSMTPMailer(SMTPConfig{Host: host, Port: port, From: "f@example.com", Timeout: 200 * time.Millisecond})

	start := time.Now()
	err = mailer.Send([]string{"x@example.com"}, "s", "b")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
