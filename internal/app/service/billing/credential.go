package billing

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"unicode"

	"github.com/fatflowers/ispbill/internal/models"
)

const credentialSymbols = "!@#$%&*?"

// CredentialIssuer derives a subscriber's credential secret: the last four
// digits of the national id, one random symbol, then the first five letters of
// the name. The symbol makes the result non-deterministic, so a secret is
// issued once and never regenerated.
type CredentialIssuer struct {
	rand io.Reader
}

func NewCredentialIssuer(r io.Reader) *CredentialIssuer {
	if r == nil {
		r = rand.Reader
	}
	return &CredentialIssuer{rand: r}
}

// Issue sets sub.CredentialSecret when it is empty and reports whether it did.
func (c *CredentialIssuer) Issue(sub *models.Subscriber) (bool, error) {
	if sub.CredentialSecret != "" {
		return false, nil
	}
	secret, err := c.derive(sub.ContactInfo.Data().NationalID, sub.Name)
	if err != nil {
		return false, err
	}
	sub.CredentialSecret = secret
	return true, nil
}

func (c *CredentialIssuer) derive(nationalID, name string) (string, error) {
	n, err := rand.Int(c.rand, big.NewInt(int64(len(credentialSymbols))))
	if err != nil {
		return "", fmt.Errorf("failed to draw credential symbol: %w", err)
	}
	var b strings.Builder
	b.WriteString(lastDigits(nationalID, 4))
	b.WriteByte(credentialSymbols[n.Int64()])
	b.WriteString(firstLetters(name, 5))
	return b.String(), nil
}

// lastDigits returns the last n digits of s, left padded with '0'.
func lastDigits(s string, n int) string {
	digits := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) > n {
		digits = digits[len(digits)-n:]
	}
	return strings.Repeat("0", n-len(digits)) + string(digits)
}

func firstLetters(s string, n int) string {
	out := make([]rune, 0, n)
	for _, r := range s {
		if len(out) == n {
			break
		}
		if unicode.IsLetter(r) {
			out = append(out, r)
		}
	}
	return string(out)
}
