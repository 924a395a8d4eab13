package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"rank", "score", "tiers", "excellence", "audit", "thresholds", "import", "serve", "migrate"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "rede-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRankCommand_Flags(t *testing.T) {
	for _, name := range []string{"month", "query", "franchisee", "format", "output", "summary"} {
		flag := rankCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "rank should have --%s flag", name)
	}
	assert.Equal(t, "table", rankCmd.Flags().Lookup("format").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestThresholdsCommand_HasSubcommands(t *testing.T) {
	cmds := thresholdsCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, name := range []string{"show", "set"} {
		assert.True(t, names[name], "thresholds should have subcommand %q", name)
	}
}

func TestImportCommand_Flags(t *testing.T) {
	for _, name := range []string{"file", "plan"} {
		flag := importCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "import should have --%s flag", name)
	}
}

func TestValidateMonth(t *testing.T) {
	tests := []struct {
		name    string
		month   string
		wantErr bool
	}{
		{"valid", "2025-07", false},
		{"december", "2025-12", false},
		{"month zero", "2025-00", true},
		{"month thirteen", "2025-13", true},
		{"missing dash", "202507", true},
		{"full date", "2025-07-01", true},
		{"garbage", "julho", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMonth(tt.month)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "São Gonça…", truncate("São Gonçalo Centro", 10))
}
