//go:build !integration

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"enrich", "serve", "runs", "classify", "cache"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "enrich-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
}

func TestEnrichCommand_Flags(t *testing.T) {
	input := enrichCmd.Flags().Lookup("input-file")
	require.NotNil(t, input)
	assert.Equal(t, []string{"true"}, input.Annotations["cobra_annotation_bash_completion_one_required_flag"])

	for _, name := range []string{"sheet", "limit", "only-missing", "resume", "start"} {
		assert.NotNil(t, enrichCmd.Flags().Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "0", enrichCmd.Flags().Lookup("limit").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestRunsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range runsCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"list", "show", "stats"} {
		assert.True(t, names[name], "expected runs subcommand %q", name)
	}
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, int64(1500), seconds(1.5).Milliseconds())
	assert.Zero(t, seconds(0))
}
