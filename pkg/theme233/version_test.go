package theme233

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchVersion(t *testing.T) {
	cases := []struct {
		expr string
		want bool
	}{
		{">=0.1", true},
		{">=0.4", true},
		{">=0.5", false},
		{"<=0.4", true},
		{"<=0.3", false},
		{"==0.4", true},
		{"0.4", true},
		{"0.3", false},
		{"0.1, 0.2, >=0.4", true},
		{" 0.1 , 0.2 ", false},
	}
	for _, c := range cases {
		got, err := matchVersion(c.expr, 0.4)
		require.NoError(t, err, c.expr)
		assert.Equal(t, c.want, got, c.expr)
	}

	for _, bad := range []string{"", ">=", "abc", "0.1,,0.2"} {
		_, err := matchVersion(bad, 0.4)
		assert.Error(t, err, bad)
	}
}

func TestIsVersionCompatible(t *testing.T) {
	ok, err := IsVersionCompatible(">=0.3")
	require.NoError(t, err)
	assert.True(t, ok)
}
