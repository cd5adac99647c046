package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotLabel(t *testing.T) {
	cases := map[string]Slot{
		"Monday-P1":    {Day: Monday, Period: 0},
		"friday-p6":    {Day: Friday, Period: 5},
		" Wed-P3 ":     {Day: Wednesday, Period: 2},
		"THURSDAY-P10": {Day: Thursday, Period: 9},
	}
	for label, want := range cases {
		got, err := ParseSlotLabel(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
	}

	for _, bad := range []string{"", "Monday", "Saturday-P1", "Mo-P1", "Monday-1", "Monday-P0", "Monday-Px"} {
		_, err := ParseSlotLabel(bad)
		assert.Error(t, err, bad)
	}
}

func TestSlotLabelRoundTrip(t *testing.T) {
	slot := Slot{Day: Tuesday, Period: 3}
	assert.Equal(t, "Tuesday-P4", slot.Label())
	parsed, err := ParseSlotLabel(slot.Label())
	require.NoError(t, err)
	assert.Equal(t, slot, parsed)
}

func TestSlotSet(t *testing.T) {
	set := newSlotSet(13)
	assert.True(t, set.Add(Slot{Day: Friday, Period: 12}))
	assert.True(t, set.Add(Slot{Day: Monday, Period: 0}))
	assert.False(t, set.Add(Slot{Day: Monday, Period: 13}))
	assert.False(t, set.Add(Slot{Day: -1, Period: 0}))

	assert.True(t, set.Has(Slot{Day: Friday, Period: 12}))
	assert.False(t, set.Has(Slot{Day: Thursday, Period: 12}))
	assert.Equal(t, 2, set.Len())

	var zero slotSet
	assert.False(t, zero.Has(Slot{}))
	assert.Equal(t, 0, zero.Len())
}

func TestOccupancyIsPerResource(t *testing.T) {
	occ := newOccupancy(2)
	slot := Slot{Day: Tuesday, Period: 1}
	occ.Reserve("R1", slot)
	assert.True(t, occ.Busy("R1", slot))
	assert.False(t, occ.Busy("R2", slot))
	assert.False(t, occ.Busy("R1", Slot{Day: Tuesday, Period: 0}))
}
