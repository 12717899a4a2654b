package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuppressionMatches_EnabledNoWindowIsInForce(t *testing.T) {
	su := NewSuppression("quiet-hours")
	su.Match = []Tag{"noisy"}

	require.True(t, su.Matches([]Tag{"noisy"}))
	require.False(t, su.Matches([]Tag{"other"}))
}

func TestSuppressionMatches_EnabledWithWindowWaitsForStart(t *testing.T) {
	su := NewSuppression("maintenance")
	su.Match = []Tag{"*"}
	su.Start = Some("window-open")

	require.False(t, su.Matches([]Tag{"anything"}), "not in force until its start event fires")

	su.State = SuppressionActive
	require.True(t, su.Matches([]Tag{"anything"}))

	su.State = SuppressionEnabled
	require.False(t, su.Matches([]Tag{"anything"}), "back to waiting once its end event returns it to enabled")
}

func TestSuppressionMatches_DisabledNeverMatches(t *testing.T) {
	su := NewSuppression("off")
	su.Match = []Tag{"*"}
	su.State = SuppressionDisabled

	require.False(t, su.Matches([]Tag{"anything"}))
}

func TestSuppressionMatches_WildcardRequiresNonEmptyTags(t *testing.T) {
	su := NewSuppression("all")
	su.Match = []Tag{"*"}

	require.True(t, su.Matches([]Tag{"x"}))
	require.False(t, su.Matches(nil))
}
