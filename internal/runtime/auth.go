package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	gc "github.com/joshsymonds/hourwatch/internal/gmail"
)

// ScopeReadonly is the only scope hourwatch requests.
const ScopeReadonly = gmail.GmailReadonlyScope

// Credentials carries service-account key material into NewGmailClient.
type Credentials struct {
	// KeyJSON is the service-account key file as downloaded from Google Cloud.
	KeyJSON []byte
	// Subject is the mailbox to impersonate with domain-wide delegation.
	Subject string
}

// AuthenticationError wraps a failure from the identity layer unchanged.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return "authenticate service account: " + e.Err.Error()
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ReadCredentials loads a key file from disk.
func ReadCredentials(path, subject string) (Credentials, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Credentials{}, errors.New("credentials file must not be empty")
	}
	data, err := os.ReadFile(path) // #nosec G304 - path supplied by operator
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials %s: %w", path, err)
	}
	return Credentials{KeyJSON: data, Subject: subject}, nil
}

// NewGmailClient builds a read-only client from service-account credentials.
// No request is made until the client is first used.
func NewGmailClient(ctx context.Context, creds Credentials) (gc.Client, error) {
	if len(creds.KeyJSON) == 0 {
		return nil, &AuthenticationError{Err: errors.New("empty service account key")}
	}
	conf, err := google.JWTConfigFromJSON(creds.KeyJSON, ScopeReadonly)
	if err != nil {
		return nil, &AuthenticationError{Err: err}
	}
	if creds.Subject != "" {
		conf.Subject = creds.Subject
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return NewGoogleAPIClient(svc), nil
}

// DefaultLogger returns the text logger used by every hourwatch command.
func DefaultLogger() *slog.Logger {
	return NewLogger(slog.LevelInfo)
}

// NewLogger returns a stderr text logger at the given level.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return level, nil
}
