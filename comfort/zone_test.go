package comfort

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBands(t *testing.T) {
	tests := []struct {
		dewPoint float64
		want     Zone
	}{
		{70, ZoneOppressive},
		{65.0, ZoneOppressive},
		{64.99, ZoneMuggy},
		{60.0, ZoneMuggy},
		{59.99, ZoneSlightlyHumid},
		{55.0, ZoneSlightlyHumid},
		{54.99, ZoneComfortable},
		{45.0, ZoneComfortable},
		{44.99, ZoneVeryComfortable},
		{40.0, ZoneVeryComfortable},
		{39.99, ZoneDry},
		{30.0, ZoneDry},
		{29.99, ZoneVeryDry},
		{-10, ZoneVeryDry},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.dewPoint), "Classify(%v)", tt.dewPoint)
	}
}

func TestClassifyIsTotal(t *testing.T) {
	// Even physically implausible dew points get a zone.
	assert.Equal(t, ZoneVeryDry, Classify(-200))
	assert.Equal(t, ZoneOppressive, Classify(300))
}

func TestZoneOrdering(t *testing.T) {
	assert.True(t, ZoneOppressive > ZoneSlightlyHumid)
	assert.True(t, ZoneMuggy >= ZoneSlightlyHumid)
	assert.True(t, ZoneComfortable < ZoneSlightlyHumid)
}
