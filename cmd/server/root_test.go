package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{{"serve"}, {"migrate", "up"}, {"migrate", "down"}, {"seed-admin"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	seed, _, err := root.Find([]string{"seed-admin"})
	require.NoError(t, err)
	assert.NotNil(t, seed.Flags().Lookup("email"))
	assert.NotNil(t, seed.Flags().Lookup("password"))
}
