package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProfiles(t *testing.T) {
	tests := []struct {
		name       string
		multiplier int
	}{
		{"google", 1},
		{"aosp", 2},
		{"custom-google", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, ok := Get(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.multiplier, o.IndentMultiplier)
			assert.True(t, o.FormatJavadoc)
			assert.True(t, o.ReorderModifiers)
			assert.Equal(t, DefaultMaxWidth, o.MaxWidth)
			assert.NoError(t, o.Validate())
		})
	}
}

func TestLookup(t *testing.T) {
	o, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, CustomGoogle, o.Style)

	o, err = Lookup("AOSP")
	require.NoError(t, err)
	assert.Equal(t, AOSP, o.Style)

	_, err = Lookup("gnu")
	require.ErrorIs(t, err, ErrUnknownStyle)
	assert.Contains(t, err.Error(), "custom-google")
}

func TestRegister(t *testing.T) {
	Register(NewProfile("test-wide").MaxWidth(120).Build())
	o, ok := Get("test-wide")
	require.True(t, ok)
	assert.Equal(t, 120, o.MaxWidth)
	assert.Contains(t, List(), "test-wide")
}

func TestOptions_Indent(t *testing.T) {
	o, _ := Get("aosp")
	assert.Equal(t, 8, o.Indent(4))
}

func TestValidate(t *testing.T) {
	err := NewProfile("broken").IndentMultiplier(0).Build().Validate()
	assert.Error(t, err)
}
