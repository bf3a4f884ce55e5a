package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_AcceptedFormats(t *testing.T) {
	inputs := []string{
		"2025-03-10",
		"10/03/2025",
		"10/3/2025",
		"10-03-2025",
		"10-3-2025",
	}

	for _, input := range inputs {
		n, err := Normalize(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, "2025-03-10", n.ISO, "input %q", input)
		assert.Equal(t, 2025, n.Time.Year())
	}
}

func TestNormalize_SameDayDifferentShapes(t *testing.T) {
	a, err := Normalize("5/3/2024")
	require.NoError(t, err)
	b, err := Normalize("05-03-2024")
	require.NoError(t, err)
	c, err := Normalize("2024-03-05")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(c))
}

func TestNormalize_BlankIsNoDate(t *testing.T) {
	for _, input := range []string{"", "   ", "\t"} {
		n, err := Normalize(input)
		require.NoError(t, err)
		assert.True(t, n.IsZero())
	}
}

func TestNormalize_Rejections(t *testing.T) {
	inputs := []string{
		"31/02/2024",  // february overflow
		"2024-02-31",  // same, ISO shape
		"29/02/2023",  // non-leap year
		"10/03/25",    // two-digit year
		"2025/03/10",  // slash with year first
		"March 10",    // month name
		"10.03.2025",  // unsupported separator
		"10/03",       // missing year
		"1/2/3/2024",  // too many components
		"aa/bb/2024",  // non-numeric
		"0/0/2024",    // zero day and month
	}

	for _, input := range inputs {
		_, err := Normalize(input)
		assert.Error(t, err, "input %q should be rejected", input)
	}
}

func TestNormalize_LeapDay(t *testing.T) {
	n, err := Normalize("29/02/2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", n.ISO)
}
