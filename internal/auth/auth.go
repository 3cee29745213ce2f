// Package auth manages the console's session with the admin API.
// Credentials come from a chain of providers (explicit flags, environment,
// interactive prompt); the first provider that yields credentials wins.
package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/robby/adminctl/internal/logging"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoCredentials    = errors.New("no credentials available")
)

// Credentials are the email and password used to log in.
type Credentials struct {
	Email    string
	Password string
}

// Valid reports whether both parts are present.
func (c Credentials) Valid() bool {
	return strings.TrimSpace(c.Email) != "" && c.Password != ""
}

// CredentialsProvider supplies login credentials from one source.
type CredentialsProvider interface {
	GetCredentials() (Credentials, error)
}

// StaticProvider returns fixed credentials, typically from CLI flags or the
// loaded configuration.
type StaticProvider struct {
	Credentials Credentials
}

// GetCredentials returns the fixed credentials when both parts are set.
func (s *StaticProvider) GetCredentials() (Credentials, error) {
	if !s.Credentials.Valid() {
		return Credentials{}, fmt.Errorf("%w: email or password not configured", ErrNoCredentials)
	}
	return s.Credentials, nil
}

// EnvProvider reads ADMIN_EMAIL and ADMIN_PASSWORD.
type EnvProvider struct{}

// GetCredentials reads the credentials from the environment.
func (e *EnvProvider) GetCredentials() (Credentials, error) {
	creds := Credentials{
		Email:    os.Getenv("ADMIN_EMAIL"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}
	if !creds.Valid() {
		return Credentials{}, fmt.Errorf("%w: ADMIN_EMAIL and ADMIN_PASSWORD must both be set", ErrNoCredentials)
	}
	return creds, nil
}

// PromptProvider asks for credentials on a terminal. The password is read
// without echo when In is a terminal.
type PromptProvider struct {
	In  io.Reader
	Out io.Writer
}

// GetCredentials prompts for an email and a password.
func (p *PromptProvider) GetCredentials() (Credentials, error) {
	in, out := p.In, p.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}

	reader := bufio.NewReader(in)
	fmt.Fprint(out, "Email: ")
	email, err := readLine(reader)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read email: %w", err)
	}

	fmt.Fprint(out, "Password: ")
	var password string
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return Credentials{}, fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	} else {
		password, err = readLine(reader)
		if err != nil {
			return Credentials{}, fmt.Errorf("failed to read password: %w", err)
		}
	}

	creds := Credentials{Email: email, Password: password}
	if !creds.Valid() {
		return Credentials{}, fmt.Errorf("%w: empty email or password", ErrNoCredentials)
	}
	return creds, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// GetCredentials asks each provider in order and returns the first
// credentials found. When every provider fails the errors are joined.
func GetCredentials(providers ...CredentialsProvider) (Credentials, error) {
	var errs []error
	for _, p := range providers {
		creds, err := p.GetCredentials()
		if err == nil {
			return creds, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Credentials{}, ErrNoCredentials
	}
	return Credentials{}, errors.Join(errs...)
}

// Session is the part of the API client the service drives.
type Session interface {
	CheckSession(ctx context.Context) (bool, error)
	Login(ctx context.Context, email, password string) error
	ResetSession() error
}

// Service checks and establishes sessions.
type Service struct {
	session Session
	log     *logrus.Logger
}

// NewService creates a service over session. log may be nil.
func NewService(session Session, log *logrus.Logger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{session: session, log: log}
}

// Check returns ErrNotAuthenticated when the server does not recognise the
// current session.
func (s *Service) Check(ctx context.Context) error {
	ok, err := s.session.CheckSession(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthenticated
	}
	return nil
}

// Ensure makes sure a session exists. A live session is reused; otherwise
// credentials are taken from the providers and used to log in.
func (s *Service) Ensure(ctx context.Context, providers ...CredentialsProvider) error {
	err := s.Check(ctx)
	if err == nil {
		s.log.Debug("existing session is valid")
		return nil
	}
	if !errors.Is(err, ErrNotAuthenticated) {
		return err
	}

	creds, err := GetCredentials(providers...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}
	if err := s.session.Login(ctx, creds.Email, creds.Password); err != nil {
		return err
	}
	s.log.WithField("email", creds.Email).Info("logged in")
	return nil
}

// SignOut drops the local session.
func (s *Service) SignOut() error {
	if err := s.session.ResetSession(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	s.log.Info("signed out")
	return nil
}
