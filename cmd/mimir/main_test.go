package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemperatureOverride(t *testing.T) {
	// Unset flag means no override, so a persisted 0.0 is not clobbered.
	assert.Nil(t, temperatureOverride())

	require.NoError(t, flag.Set("temp", "0.3"))
	got := temperatureOverride()
	require.NotNil(t, got)
	assert.Equal(t, 0.3, *got)
}
