package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unknown command error",
			err:  errors.New(`unknown command "foo" for "sensorboard"`),
			want: true,
		},
		{
			name: "unknown flag error",
			err:  errors.New(`unknown flag: --foo`),
			want: true,
		},
		{
			name: "unknown shorthand flag",
			err:  errors.New(`unknown shorthand flag: 'x' in -x`),
			want: true,
		},
		{
			name: "other error",
			err:  errors.New("connection refused"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(tt.err))
		})
	}
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "standard cobra format",
			err:  errors.New(`unknown command "foo" for "sensorboard"`),
			want: "foo",
		},
		{
			name: "command with hyphen",
			err:  errors.New(`unknown command "my-sensor" for "sensorboard"`),
			want: "my-sensor",
		},
		{
			name: "no quotes returns empty",
			err:  errors.New("unknown command foo"),
			want: "",
		},
		{
			name: "single quote returns empty",
			err:  errors.New(`unknown command "foo`),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUnknownCommand(tt.err))
		})
	}
}

func TestFormatError_SuggestsCommand(t *testing.T) {
	msg := formatError(errors.New(`unknown command "fetc" for "sensorboard"`))

	assert.Contains(t, msg, `Did you mean "fetch"?`)
	assert.Contains(t, msg, "Run 'sensorboard --help' for usage.")
}

func TestFormatError_PlainError(t *testing.T) {
	msg := formatError(errors.New("connection refused"))

	assert.Equal(t, "connection refused\n", msg)
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	want := []string{"monitor", "fetch", "status", "sensors", "init", "history", "completion", "version"}

	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	add, _, err := rootCmd.Find([]string{"sensors", "add"})
	require.NoError(t, err)
	assert.Equal(t, "add", add.Name())
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "verbose", "no-color", "log-format", "log-file"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "v", rootCmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd  string
		flag string
		def  string
	}{
		{"monitor", "interval", ""},
		{"monitor", "sensors", ""},
		{"fetch", "format", FormatText},
		{"fetch", "sensors", ""},
		{"fetch", "watch", ""},
		{"status", "format", FormatText},
		{"sensors", "format", FormatText},
		{"init", "force", "false"},
		{"init", "non-interactive", "false"},
		{"history", "since", "24h"},
		{"history", "format", FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.cmd+"/"+tt.flag, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{tt.cmd})
			require.NoError(t, err)
			flag := cmd.Flags().Lookup(tt.flag)
			require.NotNil(t, flag)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}
