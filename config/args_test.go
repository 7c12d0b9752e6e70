package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected RuntimeOptions
	}{
		{
			name: "keep-alive",
			args: []string{"Hello", "+++", "1", "---"},
			expected: RuntimeOptions{
				Entrypoint:           "Hello",
				StdoutSentinel:       "+++",
				KeepAlive:            true,
				ExecutionEndSentinel: "---",
			},
		},
		{
			name: "single-shot",
			args: []string{"Hello", "+++", "0", "---"},
			expected: RuntimeOptions{
				Entrypoint:           "Hello",
				StdoutSentinel:       "+++",
				ExecutionEndSentinel: "---",
			},
		},
		{
			name: "keep-alive flag is only enabled by 1",
			args: []string{"Hello", "+++", "true", "---"},
			expected: RuntimeOptions{
				Entrypoint:           "Hello",
				StdoutSentinel:       "+++",
				ExecutionEndSentinel: "---",
			},
		},
		{
			name: "nul escapes",
			args: []string{"Hello", `\0+\0`, "1", `\0---`},
			expected: RuntimeOptions{
				Entrypoint:           "Hello",
				StdoutSentinel:       "\x00+\x00",
				KeepAlive:            true,
				ExecutionEndSentinel: "\x00---",
			},
		},
		{
			name:     "metadata",
			args:     []string{"metadata"},
			expected: RuntimeOptions{WriteMetadataOnStartup: true},
		},
		{
			name:     "metadata ignores trailing arguments",
			args:     []string{"metadata", "x", "y"},
			expected: RuntimeOptions{WriteMetadataOnStartup: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseArgs(tt.args)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, opts)
		})
	}
}

func TestParseArgs_WrongCount(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"Hello"},
		{"Hello", "+++"},
		{"Hello", "+++", "1"},
		{"Hello", "+++", "1", "---", "extra"},
	} {
		_, err := ParseArgs(args)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingArguments))

		var missing *MissingArgumentsError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, len(args), missing.Count)
		assert.Contains(t, err.Error(), "metadata")
	}
}

func TestRuntimeOptions_ArgsRoundTrip(t *testing.T) {
	for _, args := range [][]string{
		{"Hello", "+++", "1", "---"},
		{"Binary", `\0stdout\0`, "0", `\0end\0`},
		{"metadata"},
	} {
		opts, err := ParseArgs(args)
		require.NoError(t, err)

		assert.Equal(t, args, opts.Args())

		again, err := ParseArgs(opts.Args())
		require.NoError(t, err)
		assert.Equal(t, opts, again)
	}
}

func TestSentinelEscaping(t *testing.T) {
	assert.Equal(t, "\x00abc\x00", UnescapeSentinel(`\0abc\0`))
	assert.Equal(t, `\0abc\0`, EscapeSentinel("\x00abc\x00"))
	assert.Equal(t, "plain", UnescapeSentinel("plain"))
}
