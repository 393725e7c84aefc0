package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	cmd := rootCmd()

	assert.Equal(t, "comment-gateway", cmd.Use)

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"version", "api-server"}, names)

	flag := cmd.PersistentFlags().Lookup("graceful-shutdown")
	require.NotNil(t, flag)
	assert.Equal(t, "1s", flag.DefValue)
}
