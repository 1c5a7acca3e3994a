// Package mailer sends the rendered signature image to the signed-in user
// through an SMTP relay.
package mailer

import (
	"context"
	"crypto/tls"
	"net"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
	// ImplicitTLS dials TLS directly (port 465 style).
	ImplicitTLS bool
	// StartTLS upgrades plain connections and fails when the relay does not offer it.
	StartTLS  bool
	TLSConfig *tls.Config
	Timeout   time.Duration
}

// Dispatcher sends one message per call. Nothing is queued or retried.
type Dispatcher struct {
	opts Options
}

func NewDispatcher(opts Options) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.From == "" {
		opts.From = opts.Username
	}
	return &Dispatcher{opts: opts}
}

// Send mails the image carried by imageDataURL to recipient as an inline
// attachment of a fixed HTML body.
func (d *Dispatcher) Send(ctx context.Context, imageDataURL, recipient, displayName string) error {
	image, err := ParseDataURL(imageDataURL)
	if err != nil {
		return err
	}
	to, err := mail.ParseAddress(strings.TrimSpace(recipient))
	if err != nil {
		return &errors.ValidationError{Field: "userEmail", Message: "must be a valid email address", Err: err}
	}
	to.Name = strings.TrimSpace(displayName)

	if d.opts.From == "" {
		return &errors.UpstreamError{Provider: errors.ProviderSMTP, Kind: errors.KindAuth, Message: "no sender address configured"}
	}
	from := mail.Address{Name: d.opts.FromName, Address: d.opts.From}

	data, err := newMessage(from, *to, image).bytes()
	if err != nil {
		return errors.Wrapf(err, "build message")
	}

	if err := d.deliver(ctx, from.Address, to.Address, data); err != nil {
		return err
	}
	log.Info().Str("recipient", to.Address).Int("bytes", len(data)).Msg("Signature mail sent")
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, from, to string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	c, err := d.dial(ctx)
	if err != nil {
		return smtpError("connect", err)
	}
	defer c.Close()

	if d.opts.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", d.opts.Username, d.opts.Password)); err != nil {
			return smtpError("authenticate", err)
		}
	}
	if err := c.Mail(from, nil); err != nil {
		return smtpError("MAIL FROM", err)
	}
	if err := c.Rcpt(to, nil); err != nil {
		return smtpError("RCPT TO", err)
	}
	w, err := c.Data()
	if err != nil {
		return smtpError("DATA", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return smtpError("DATA", err)
	}
	if err := w.Close(); err != nil {
		return smtpError("DATA", err)
	}
	if err := c.Quit(); err != nil {
		log.Debug().Err(err).Msg("SMTP QUIT failed after delivery")
	}
	return nil
}

func (d *Dispatcher) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(d.opts.Host, d.opts.Port)
	tlsConfig := d.opts.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: d.opts.Host, MinVersion: tls.VersionTLS12}
	}

	var (
		conn net.Conn
		err  error
	)
	if d.opts.ImplicitTLS {
		dialer := &tls.Dialer{NetDialer: &net.Dialer{}, Config: tlsConfig}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if d.opts.StartTLS && !d.opts.ImplicitTLS {
		c, err := smtp.NewClientStartTLS(conn, tlsConfig)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return c, nil
	}
	return smtp.NewClient(conn), nil
}

// smtpError classifies a relay failure by its reply code.
func smtpError(stage string, err error) error {
	upstream := &errors.UpstreamError{
		Provider: errors.ProviderSMTP,
		Kind:     errors.KindConnection,
		Message:  stage + " failed",
		Err:      err,
	}
	var replyErr *smtp.SMTPError
	if errors.As(err, &replyErr) {
		upstream.StatusCode = replyErr.Code
		switch {
		case replyErr.Code == 530 || replyErr.Code == 534 || replyErr.Code == 535 || replyErr.Code == 454:
			upstream.Kind = errors.KindAuth
		case replyErr.Code == 421 || replyErr.Code == 450 || replyErr.Code == 451:
			upstream.Kind = errors.KindServiceUnavailable
		case replyErr.Code == 452:
			upstream.Kind = errors.KindRateLimit
		case replyErr.Code == 550 || replyErr.Code == 551 || replyErr.Code == 553:
			upstream.Kind = errors.KindNotFound
		default:
			upstream.Kind = errors.KindUnknown
		}
	}
	return upstream
}
