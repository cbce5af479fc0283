package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MoversScanner/internal/domain"
)

func TestParseRun(t *testing.T) {
	t.Parallel()

	mode, direction, err := parseRun("monthly", "gainers")
	require.NoError(t, err)
	assert.Equal(t, domain.Monthly, mode)
	assert.Equal(t, domain.Gainer, direction)

	mode, direction, err = parseRun("Daily", "loser")
	require.NoError(t, err)
	assert.Equal(t, domain.Daily, mode)
	assert.Equal(t, domain.Loser, direction)

	_, _, err = parseRun("weekly", "gainers")
	assert.ErrorContains(t, err, "unknown mode")

	_, _, err = parseRun("daily", "movers")
	assert.ErrorContains(t, err, "unknown direction")
}
