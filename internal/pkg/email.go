package pkg

import (
	"net/mail"
	"strings"
)

// IsEmailValid - reports whether email is a bare address such as "user@example.com".
func IsEmailValid(email string) bool {
	if email == "" || strings.TrimSpace(email) != email {
		return false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}

	// ParseAddress also accepts "Name <user@host>", only the bare form is an email here.
	if addr.Address != email {
		return false
	}

	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}
