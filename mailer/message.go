package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// ImageContentID is how the HTML body refers to the inline image.
	ImageContentID = "signature"
	subject        = "Your email signature"
)

type message struct {
	from      mail.Address
	to        mail.Address
	image     *Attachment
	date      time.Time
	messageID string
}

func newMessage(from, to mail.Address, image *Attachment) *message {
	domain := "localhost"
	if _, d, ok := strings.Cut(from.Address, "@"); ok && d != "" {
		domain = d
	}
	return &message{
		from:      from,
		to:        to,
		image:     image,
		date:      time.Now(),
		messageID: fmt.Sprintf("<%s@%s>", uuid.New().String(), domain),
	}
}

func (m *message) htmlBody() string {
	name := m.to.Name
	if name == "" {
		name = m.to.Address
	}
	return `<!DOCTYPE html>
<html>
<body style="font-family: Arial, Helvetica, sans-serif; color: #1f2937;">
<p>Hello ` + html.EscapeString(name) + `,</p>
<p>Your new email signature is below. Right-click the image to copy it into your mail client's signature settings.</p>
<p><img src="cid:` + ImageContentID + `" alt="Email signature" style="max-width: 550px; height: auto;"></p>
</body>
</html>
`
}

// bytes encodes the message as multipart/related with the HTML body first
// and the image inline.
func (m *message) bytes() ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=utf-8")
	htmlHeader.Set("Content-Transfer-Encoding", "quoted-printable")
	pw, err := mw.CreatePart(htmlHeader)
	if err != nil {
		return nil, err
	}
	qp := quotedprintable.NewWriter(pw)
	if _, err := qp.Write([]byte(m.htmlBody())); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}

	filename := "signature" + extension(m.image.ContentType)
	imageHeader := textproto.MIMEHeader{}
	imageHeader.Set("Content-Type", mime.FormatMediaType(m.image.ContentType, map[string]string{"name": filename}))
	imageHeader.Set("Content-Transfer-Encoding", "base64")
	imageHeader.Set("Content-ID", "<"+ImageContentID+">")
	imageHeader.Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	iw, err := mw.CreatePart(imageHeader)
	if err != nil {
		return nil, err
	}
	if err := writeBase64Lines(iw, m.image.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	headers := []struct{ key, value string }{
		{"From", m.from.String()},
		{"To", m.to.String()},
		{"Subject", mime.QEncoding.Encode("utf-8", subject)},
		{"Date", m.date.Format(time.RFC1123Z)},
		{"Message-ID", m.messageID},
		{"MIME-Version", "1.0"},
		{"Content-Type", mime.FormatMediaType("multipart/related", map[string]string{"boundary": mw.Boundary(), "type": "text/html"})},
	}
	for _, h := range headers {
		fmt.Fprintf(&out, "%s: %s\r\n", h.key, h.value)
	}
	out.WriteString("\r\n")
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// writeBase64Lines writes data as base64 in 76 character lines.
func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(76, len(encoded))
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}
