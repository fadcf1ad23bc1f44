package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// DefaultDialTimeout bounds connecting to the IMAP server.
const DefaultDialTimeout = 30 * time.Second

// ErrAuth is returned when the mailbox rejects the credentials.
var ErrAuth = errors.New("mailbox authentication failed")

// Appender stores a raw message in the drafts mailbox.
type Appender interface {
	AppendDraft(ctx context.Context, msg []byte, date time.Time) error
}

// IMAPConfig describes the mailbox drafts are filed in.
type IMAPConfig struct {
	Addr     string
	User     string
	Password string
	Mailbox  string
	// Insecure connects without TLS. Only for local test servers.
	Insecure  bool
	TLSConfig *tls.Config
}

// IMAPDrafts files drafts over IMAP, one connection per draft.
type IMAPDrafts struct {
	cfg IMAPConfig
}

// NewIMAPDrafts creates an appender for cfg.
func NewIMAPDrafts(cfg IMAPConfig) *IMAPDrafts {
	return &IMAPDrafts{cfg: cfg}
}

// AppendDraft logs in, appends msg with the \Draft flag and logs out.
// A rejected login is reported as ErrAuth.
func (d *IMAPDrafts) AppendDraft(ctx context.Context, msg []byte, date time.Time) error {
	c, err := d.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Logout() }()

	if err := c.Login(d.cfg.User, d.cfg.Password); err != nil {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}

	flags := []string{imap.DraftFlag}
	if err := c.Append(d.cfg.Mailbox, flags, date, bytes.NewBuffer(msg)); err != nil {
		return fmt.Errorf("failed to append draft to %s: %w", d.cfg.Mailbox, err)
	}
	return nil
}

func (d *IMAPDrafts) dial(ctx context.Context) (*client.Client, error) {
	dialer := &net.Dialer{Timeout: DefaultDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", d.cfg.Addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if !d.cfg.Insecure {
		cfg := d.cfg.TLSConfig
		if cfg == nil {
			host, _, _ := net.SplitHostPort(d.cfg.Addr)
			cfg = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
		}
		tlsConn := tls.Client(conn, cfg)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to connect to %s: %w", d.cfg.Addr, err)
		}
		conn = tlsConn
	}

	c, err := client.New(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to start IMAP session: %w", err)
	}
	return c, nil
}
