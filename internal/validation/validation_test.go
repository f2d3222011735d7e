package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("creator@mingree.in"))
	assert.NoError(t, ValidateEmail("  Brand.Team+ads@Example.co  "))

	for _, bad := range []string{"", "no-at", "a@b", "a@@b.com", "a b@c.com"} {
		err := ValidateEmail(bad)
		assert.Error(t, err, bad)
		assert.True(t, apperror.IsValidation(err), bad)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Secret123"))
	assert.Error(t, ValidatePassword("short1A"))
	assert.Error(t, ValidatePassword("alllowercase1"))
	assert.Error(t, ValidatePassword("ALLUPPERCASE1"))
	assert.Error(t, ValidatePassword("NoDigitsHere"))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("reel_maker"))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("1creator"))
	assert.Error(t, ValidateUsername("with space"))
}

func TestValidateIFSC(t *testing.T) {
	assert.NoError(t, ValidateIFSC("HDFC0001234"))
	assert.NoError(t, ValidateIFSC("SBIN0ABC123"))

	for _, bad := range []string{"", "HDFC1001234", "hdfc0001234", "HDF00001234", "HDFC00012345"} {
		assert.Error(t, ValidateIFSC(bad), bad)
	}
}

func TestValidateAccountNumber(t *testing.T) {
	assert.NoError(t, ValidateAccountNumber("123456789012"))
	assert.Error(t, ValidateAccountNumber("12345678"))
	assert.Error(t, ValidateAccountNumber("12345abc9012"))
}

func TestValidateUTR(t *testing.T) {
	assert.NoError(t, ValidateUTR("HDFCN52022101512345"))
	assert.Error(t, ValidateUTR(""))
	assert.Error(t, ValidateUTR("short"))
}

func TestValidateContentLinks(t *testing.T) {
	assert.NoError(t, ValidateContentLinks([]string{"https://www.instagram.com/reel/Cx1/"}))

	cases := map[string][]string{
		"empty":     {},
		"http":      {"http://instagram.com/p/abc"},
		"host":      {"https://example.com/p/abc"},
		"no path":   {"https://instagram.com/"},
		"duplicate": {"https://instagram.com/p/a", "https://instagram.com/p/a"},
		"too many": {
			"https://instagram.com/p/1", "https://instagram.com/p/2", "https://instagram.com/p/3",
			"https://instagram.com/p/4", "https://instagram.com/p/5", "https://instagram.com/p/6",
		},
	}
	for name, links := range cases {
		assert.Error(t, ValidateContentLinks(links), name)
	}
}

func TestInstagramHandle(t *testing.T) {
	handle := NormalizeInstagramHandle(" @Mingree.Creator ")
	assert.Equal(t, "mingree.creator", handle)
	assert.NoError(t, ValidateInstagramHandle(handle))

	assert.Error(t, ValidateInstagramHandle("bad handle"))
	assert.Error(t, ValidateInstagramHandle(".dot"))
	assert.Error(t, ValidateInstagramHandle(""))
	assert.Error(t, ValidateInstagramHandle(strings.Repeat("a", MaxInstagramHandleLen+1)))
}

func TestValidatePromoCode(t *testing.T) {
	assert.NoError(t, ValidatePromoCode("WELCOME50"))
	assert.NoError(t, ValidatePromoCode("pro-trial"))
	assert.Error(t, ValidatePromoCode("ab"))
	assert.Error(t, ValidatePromoCode("SPACE CODE"))
}
