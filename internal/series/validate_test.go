package series

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "myseries", NormalizeName("  MySeries "))
	assert.Equal(t, "abc-1", NormalizeName("ABC-1"))
}

func TestValidateNameAccepts(t *testing.T) {
	for _, name := range []string{
		"abc-1",
		"my_series",
		"x",
		strings.Repeat("a", MaxNameLength),
	} {
		assert.NoError(t, ValidateName(name), name)
	}
}

func TestValidateNameRejects(t *testing.T) {
	for _, name := range []string{
		"",
		"bad name",
		"a/b",
		"a:b",
		"a@b",
		"tab\there",
		strings.Repeat("a", MaxNameLength+1),
	} {
		err := ValidateName(name)
		require.Error(t, err, name)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "series name", verr.Field)
	}
}

func TestValidateNameLengthCountsUTF16Units(t *testing.T) {
	// 200 two-byte runes: 400 bytes but only 200 UTF-16 units.
	assert.NoError(t, ValidateName(strings.Repeat("é", 200)))
	assert.Error(t, ValidateName(strings.Repeat("é", MaxNameLength+1)))

	// Supplementary-plane runes occupy a surrogate pair (two units each).
	assert.Error(t, ValidateName(strings.Repeat("😀", 128)))  // 256 units
	assert.NoError(t, ValidateName(strings.Repeat("😀", 127))) // 254 units
}

func TestValidatePrice(t *testing.T) {
	for _, price := range []string{"0", "5", "1000000000000000000000000"} {
		assert.NoError(t, ValidatePrice(price), price)
	}
	for _, price := range []string{"", "5.5", "-1", "abc", "1e3", " 5"} {
		err := ValidatePrice(price)
		require.Error(t, err, price)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "price", verr.Field)
	}
}
