package billing

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/fatflowers/ispbill/internal/models"
)

func TestCredentialIssuer_Format(t *testing.T) {
	issuer := NewCredentialIssuer(nil)
	sub := &models.Subscriber{
		Name:        "Maria Lopez",
		ContactInfo: datatypes.NewJSONType(models.ContactInfo{NationalID: "ID-1234-5678"}),
	}

	issued, err := issuer.Issue(sub)
	require.NoError(t, err)
	require.True(t, issued)
	require.Regexp(t, regexp.MustCompile(`^5678[!@#$%&*?]Maria$`), sub.CredentialSecret)
}

func TestCredentialIssuer_IssuesOnce(t *testing.T) {
	issuer := NewCredentialIssuer(nil)
	sub := &models.Subscriber{Name: "Al", CredentialSecret: "keep-me"}

	issued, err := issuer.Issue(sub)
	require.NoError(t, err)
	require.False(t, issued)
	require.Equal(t, "keep-me", sub.CredentialSecret)
}

func TestCredentialIssuer_ShortInputs(t *testing.T) {
	// a zero byte always draws the first symbol
	issuer := NewCredentialIssuer(bytes.NewReader(make([]byte, 64)))
	sub := &models.Subscriber{Name: "Jo 2"}

	_, err := issuer.Issue(sub)
	require.NoError(t, err)
	require.Equal(t, "0000!Jo", sub.CredentialSecret)
}

func TestCredentialIssuer_RandFailure(t *testing.T) {
	issuer := NewCredentialIssuer(bytes.NewReader(nil))
	sub := &models.Subscriber{Name: "Jo"}

	_, err := issuer.Issue(sub)
	require.Error(t, err)
	require.Empty(t, sub.CredentialSecret)
}

func TestLastDigitsAndFirstLetters(t *testing.T) {
	require.Equal(t, "0042", lastDigits("42", 4))
	require.Equal(t, "6789", lastDigits("12-345-6789", 4))
	require.Equal(t, "Añasc", firstLetters("Añasco Ruiz", 5))
}
