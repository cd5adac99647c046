package scheduler

import "math/bits"

// slotSet is a fixed-size bitset over a DaysPerWeek × periodsPerDay grid.
type slotSet struct {
	periods int
	words   []uint64
}

func newSlotSet(periodsPerDay int) slotSet {
	size := DaysPerWeek * periodsPerDay
	return slotSet{periods: periodsPerDay, words: make([]uint64, (size+63)/64)}
}

func (s slotSet) index(slot Slot) (int, bool) {
	if !slot.within(s.periods) {
		return 0, false
	}
	return int(slot.Day)*s.periods + slot.Period, true
}

// Has reports whether slot is a member. Out-of-grid slots are never members.
func (s slotSet) Has(slot Slot) bool {
	idx, ok := s.index(slot)
	if !ok {
		return false
	}
	return s.words[idx/64]&(1<<uint(idx%64)) != 0
}

// Add inserts slot and reports whether it was inside the grid.
func (s slotSet) Add(slot Slot) bool {
	idx, ok := s.index(slot)
	if !ok {
		return false
	}
	s.words[idx/64] |= 1 << uint(idx%64)
	return true
}

// Len counts members.
func (s slotSet) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// occupancy tracks committed slots per resource (teacher or room) for one run.
type occupancy struct {
	periods int
	byID    map[string]slotSet
}

func newOccupancy(periodsPerDay int) *occupancy {
	return &occupancy{periods: periodsPerDay, byID: make(map[string]slotSet)}
}

func (o *occupancy) Busy(id string, slot Slot) bool {
	set, ok := o.byID[id]
	return ok && set.Has(slot)
}

func (o *occupancy) Reserve(id string, slot Slot) {
	set, ok := o.byID[id]
	if !ok {
		set = newSlotSet(o.periods)
		o.byID[id] = set
	}
	set.Add(slot)
}
