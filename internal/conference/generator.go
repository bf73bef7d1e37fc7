package conference

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const (
	MinPasswordLength = 4
	MaxPasswordLength = 50

	maxSlugLength = 40
)

// passwordAlphabet omits characters that read ambiguously when a password is
// shown on a shared screen: 0/O/o, 1/l/I.
const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// passwordSymbols are the punctuation characters accepted in custom passwords.
const passwordSymbols = "@#$%^&+=!_-."

const channelAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generator provisions channel names and join passwords for the external
// conferencing provider.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// ChannelName derives a provider channel id from the meeting title: sanitized
// title, a UTC timestamp and a random suffix. Collisions are improbable, not
// impossible; the unique index on the meetings table is the backstop.
func (*Generator) ChannelName(title string) string {
	slug := slugify(title)
	if slug == "" {
		slug = "meeting"
	}
	stamp := time.Now().UTC().Format("20060102-1504")
	return fmt.Sprintf("%s-%s-%s", slug, stamp, randomString(channelAlphabet, 6))
}

// Password returns a random join password drawn from the unambiguous
// alphabet. Lengths outside the policy bounds are clamped into them.
func (*Generator) Password(length int) string {
	if length < MinPasswordLength {
		length = MinPasswordLength
	}
	if length > MaxPasswordLength {
		length = MaxPasswordLength
	}
	return randomString(passwordAlphabet, length)
}

// ValidatePassword returns the policy violations for a custom join password:
// length 4..50, letters, digits and a small symbol set. Empty means the
// password is acceptable.
func (*Generator) ValidatePassword(password string) []string {
	var problems []string
	if len(password) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		problems = append(problems, fmt.Sprintf("must be at most %d characters", MaxPasswordLength))
	}
	for _, r := range password {
		if !allowedPasswordRune(r) {
			problems = append(problems, fmt.Sprintf("may only contain letters, digits and %s", passwordSymbols))
			break
		}
	}
	return problems
}

func allowedPasswordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(passwordSymbols, r)
}

// slugify keeps lowercase letters and digits, collapses everything else into
// single dashes and caps the result at maxSlugLength.
func slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
		if b.Len() > maxSlugLength {
			break
		}
	}
	s := b.String()
	if len(s) > maxSlugLength {
		s = s[:maxSlugLength]
	}
	return strings.TrimRight(s, "-")
}

func randomString(alphabet string, n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}
