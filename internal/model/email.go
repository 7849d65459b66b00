// human readable and writable email type
// which can be used inside config file
package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var emailRx = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// EmailAddr is a validated email address. The zero value is invalid, use
// ParseEmail.
type EmailAddr struct {
	addr string
}

// ParseEmail validates s and returns it as EmailAddr.
func ParseEmail(s string) (EmailAddr, error) {
	s = strings.TrimSpace(s)
	if !emailRx.MatchString(s) {
		return EmailAddr{}, fmt.Errorf("%q: %w", s, ErrInvalidEmail)
	}
	return EmailAddr{addr: s}, nil
}

// MustParseEmail is ParseEmail which panics on error. For tests and
// constants only.
func MustParseEmail(s string) EmailAddr {
	e, err := ParseEmail(s)
	if err != nil {
		panic(err)
	}
	return e
}

func (e EmailAddr) String() string {
	return e.addr
}

func (e EmailAddr) IsZero() bool {
	return e.addr == ""
}

// Local returns the part before @, used as the username query for
// username-oriented tools.
func (e EmailAddr) Local() string {
	at := strings.LastIndexByte(e.addr, '@')
	if at < 0 {
		return e.addr
	}
	return e.addr[:at]
}

// Domain returns the part after @.
func (e EmailAddr) Domain() string {
	at := strings.LastIndexByte(e.addr, '@')
	if at < 0 {
		return ""
	}
	return e.addr[at+1:]
}

// Slug returns a filesystem-safe rendition of the address, used in report
// file names.
func (e EmailAddr) Slug() string {
	r := strings.NewReplacer("@", "_at_", ".", "_")
	return r.Replace(e.addr)
}

func (e *EmailAddr) UnmarshalText(text []byte) error {
	if e == nil {
		return errors.New("can't unmarshal to nil")
	}
	parsed, err := ParseEmail(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func (e EmailAddr) MarshalText() ([]byte, error) {
	return []byte(e.addr), nil
}
