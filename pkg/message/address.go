package message

import (
	"mime"
	"strings"
)

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string
	Email string
}

// ParseAddress parses "user@example.com" or "Name <user@example.com>".
// The display name may contain any UTF-8; the mailbox must be ASCII.
func ParseAddress(s string) (Address, error) {
	raw := strings.TrimSpace(s)
	var a Address

	if open := strings.LastIndexByte(raw, '<'); open >= 0 && strings.HasSuffix(raw, ">") {
		a.Name = strings.Trim(strings.TrimSpace(raw[:open]), `"`)
		a.Email = strings.TrimSpace(raw[open+1 : len(raw)-1])
	} else {
		a.Email = raw
	}

	if err := validateMailbox(a.Email); err != nil {
		return Address{}, err
	}
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Domain returns the part after the last @.
func (a Address) Domain() string {
	return a.Email[strings.LastIndexByte(a.Email, '@')+1:]
}

// String formats the address for a message header, encoding a non-ASCII
// display name.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	name := mime.QEncoding.Encode("utf-8", a.Name)
	if name == a.Name && strings.ContainsAny(name, `()<>[]:;@\,."`) {
		name = `"` + strings.ReplaceAll(strings.ReplaceAll(name, `\`, `\\`), `"`, `\"`) + `"`
	}
	return name + " <" + a.Email + ">"
}

// validateMailbox checks the addr-spec. A local part or domain containing
// whitespace or angle brackets counts as missing.
func validateMailbox(email string) error {
	for i := 0; i < len(email); i++ {
		if email[i] >= 0x80 {
			return NonASCIIChars(email)
		}
	}

	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return EmailMissingAt(email)
	}
	if local := email[:at]; local == "" || strings.ContainsAny(local, invalidMailboxChars) {
		return EmailMissingLocalPart(email)
	}
	if domain := email[at+1:]; domain == "" || strings.ContainsAny(domain, invalidMailboxChars) {
		return EmailMissingDomain(email)
	}
	return nil
}

const invalidMailboxChars = " \t\r\n<>"
