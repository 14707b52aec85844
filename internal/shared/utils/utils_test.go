package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyContentHash(t *testing.T) {
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", EmptyContentHash())
}

func TestHasherAlgorithms(t *testing.T) {
	assert.Len(t, NewHasher(SHA1).HashString("abc"), 40)
	assert.Len(t, DefaultHasher().HashString("abc"), 64)
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		required bool
		wantErr  bool
	}{
		{"valid", "grain_1-A", true, false},
		{"empty optional", "", false, false},
		{"empty required", "", true, true},
		{"slash", "../etc", true, true},
		{"too long", strings.Repeat("a", MaxIDLength+1), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id, "grain_id", tt.required)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDeepLink(t *testing.T) {
	assert.NoError(t, ValidateDeepLink("/docs/1", "a=b", "top"))
	assert.Error(t, ValidateDeepLink(strings.Repeat("x", MaxPathLength+1), "", ""))
	assert.Error(t, ValidateDeepLink("", string([]byte{0xff}), ""))
}

func TestSanitizeTitle(t *testing.T) {
	clean, err := SanitizeTitle("  <b>Groceries</b><script>alert(1)</script> ")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", clean)

	_, err = SanitizeTitle(strings.Repeat("t", MaxTitleLength+1))
	assert.Error(t, err)
}

func TestSanitizeTitleKeepsPlainText(t *testing.T) {
	tests := []string{
		"Q&A notes",
		`Tom "Jerry"`,
		"x < y",
		"O'Brien",
	}

	for _, title := range tests {
		t.Run(title, func(t *testing.T) {
			clean, err := SanitizeTitle(title)
			require.NoError(t, err)
			assert.Equal(t, title, clean)
		})
	}
}
