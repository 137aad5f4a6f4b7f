package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// IdentifierKind distinguishes the two contact channels an account can be
// reached on. Store lookups and OTP delivery switch exhaustively on it.
type IdentifierKind int

const (
	IdentifierPhone IdentifierKind = iota
	IdentifierEmail
)

// Identifier is a tagged phone-or-email contact value, normalized.
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// ParseIdentifier classifies a raw contact string as a phone number or an
// email address. Phone numbers keep a leading + and digits only.
func ParseIdentifier(raw string) (Identifier, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Identifier{}, fmt.Errorf("identifier is required")
	}

	if strings.Contains(v, "@") {
		v = strings.ToLower(v)
		if !emailRegex.MatchString(v) {
			return Identifier{}, fmt.Errorf("invalid email format")
		}
		return Identifier{Kind: IdentifierEmail, Value: v}, nil
	}

	v = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '+':
			return r
		case r == ' ', r == '-', r == '(', r == ')':
			return -1
		}
		return r
	}, v)
	if !phoneRegex.MatchString(v) {
		return Identifier{}, fmt.Errorf("invalid phone format")
	}
	return Identifier{Kind: IdentifierPhone, Value: v}, nil
}

func (i Identifier) IsPhone() bool { return i.Kind == IdentifierPhone }
func (i Identifier) IsEmail() bool { return i.Kind == IdentifierEmail }

func (i Identifier) String() string { return i.Value }
