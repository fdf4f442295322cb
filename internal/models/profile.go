// internal/models/profile.go

package models

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"dxcluster/internal/apperr"
)

// DefaultPort is the standard telnet port used when a profile leaves it unset.
const DefaultPort = 23

// Profile describes how to reach one cluster server.
type Profile struct {
	Host     string
	Port     int
	Username string
	Password string
}

// NewProfile builds a profile from raw form input.
func NewProfile(host, port, username, password string) (Profile, error) {
	p := Profile{
		Host:     strings.TrimSpace(host),
		Username: username,
		Password: password,
	}
	n, err := ParsePort(port)
	if err != nil {
		return Profile{}, err
	}
	p.Port = n
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// ParsePort converts a port typed by the user. An empty string means the
// default telnet port.
func ParsePort(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPort, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.New(apperr.ValidationError, "invalid port", err)
	}
	if !ValidPort(n) {
		return 0, apperr.New(apperr.ValidationError, "invalid port", fmt.Errorf("%d out of range 1-65535", n))
	}
	return n, nil
}

// ValidPort reports whether n is a usable TCP port.
func ValidPort(n int) bool {
	return n >= 1 && n <= 65535
}

// WithDefaults returns a copy with the port defaulted.
func (p Profile) WithDefaults() Profile {
	if p.Port == 0 {
		p.Port = DefaultPort
	}
	return p
}

// Validate checks the profile before any I/O is attempted.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Host) == "" {
		return apperr.New(apperr.ValidationError, "empty host", nil)
	}
	if p.Port != 0 && !ValidPort(p.Port) {
		return apperr.New(apperr.ValidationError, "invalid port", fmt.Errorf("%d out of range 1-65535", p.Port))
	}
	return nil
}

// Identity is the bookmark key: "user@host:port", or "host:port" when there
// is no username.
func (p Profile) Identity() string {
	p = p.WithDefaults()
	if p.Username != "" {
		return fmt.Sprintf("%s@%s:%d", p.Username, p.Host, p.Port)
	}
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// Address returns the dial address.
func (p Profile) Address() string {
	p = p.WithDefaults()
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// HasLogin reports whether the handshake should answer the login prompt.
func (p Profile) HasLogin() bool {
	return p.Username != ""
}

// HasPassword reports whether the handshake should answer the password
// prompt. A password is never sent without a username.
func (p Profile) HasPassword() bool {
	return p.Username != "" && p.Password != ""
}

// String never includes the password.
func (p Profile) String() string {
	return p.Identity()
}
