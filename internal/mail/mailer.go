// Package mail sends transactional email over SMTP.
package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strconv"
)

// Attachment is a file to attach to an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Sender delivers a single message.
type Sender interface {
	Send(to, subject, body string, attachments ...Attachment) error
}

// Mailer sends mail through a plain SMTP relay (Mailpit in development).
type Mailer struct {
	host string
	port int
	from string
}

// NewMailer constructs a Mailer.
func NewMailer(host string, port int, from string) *Mailer {
	return &Mailer{host: host, port: port, from: from}
}

// Send delivers one message, optionally with attachments.
func (m *Mailer) Send(to, subject, body string, attachments ...Attachment) error {
	msg, err := m.build(to, subject, body, attachments)
	if err != nil {
		return fmt.Errorf("mail: build message: %w", err)
	}
	addr := m.host + ":" + strconv.Itoa(m.port)
	if err := smtp.SendMail(addr, nil, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

func (m *Mailer) build(to, subject, body string, attachments []Attachment) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	fmt.Fprintf(buf, "From: %s\r\n", m.from)
	fmt.Fprintf(buf, "To: %s\r\n", to)
	fmt.Fprintf(buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", writer.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, att := range attachments {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", att.ContentType)
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, att.Data); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// base64LineLength is the maximum encoded line length allowed by RFC 2045.
const base64LineLength = 76

// writeBase64 emits the data base64-encoded and folded into 76-character
// lines so no body line exceeds the SMTP limit.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := base64LineLength
		if n > len(encoded) {
			n = len(encoded)
		}
		if _, err := io.WriteString(w, encoded[:n]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
