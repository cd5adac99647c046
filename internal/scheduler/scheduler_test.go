package scheduler

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateHappyPath(t *testing.T) {
	result, err := Generate(Input{
		Classes:       []ClassSubjects{{ClassID: "Class_A", Subjects: []string{"Math", "Science"}}},
		TeacherOf:     map[string]string{"Math": "T1", "Science": "T2"},
		Rooms:         []string{"R1"},
		PeriodsPerDay: 2,
		Availability: map[string][]Slot{
			"T1": {{Day: Monday, Period: 0}},
			"T2": {{Day: Monday, Period: 1}},
		},
	})
	require.NoError(t, err)

	grid, ok := result.Grid("Class_A")
	require.True(t, ok)
	require.Len(t, grid, DaysPerWeek)
	assert.Equal(t, "Math (R1)", grid[Monday][0].String())
	assert.Equal(t, "Science (R1)", grid[Monday][1].String())
	for day := Tuesday; day <= Friday; day++ {
		for period := 0; period < 2; period++ {
			assert.Equal(t, FreeLabel, grid[day][period].String())
		}
	}
	assert.Empty(t, result.Unplaced)
	assert.Len(t, result.Placements, 2)
}

func TestGenerateRoomContentionFollowsClassOrder(t *testing.T) {
	build := func(order ...string) Input {
		subjects := map[string]string{"Class_A": "Math", "Class_B": "Art"}
		classes := make([]ClassSubjects, 0, len(order))
		for _, id := range order {
			classes = append(classes, ClassSubjects{ClassID: id, Subjects: []string{subjects[id]}})
		}
		return Input{
			Classes:       classes,
			TeacherOf:     map[string]string{"Math": "T1", "Art": "T2"},
			Rooms:         []string{"R1"},
			PeriodsPerDay: 3,
			Availability: map[string][]Slot{
				"T1": {{Day: Monday, Period: 0}},
				"T2": {{Day: Monday, Period: 0}},
			},
		}
	}

	first, err := Generate(build("Class_A", "Class_B"))
	require.NoError(t, err)
	gridA, _ := first.Grid("Class_A")
	gridB, _ := first.Grid("Class_B")
	assert.Equal(t, "Math (R1)", gridA[Monday][0].String())
	assertAllFree(t, gridB)
	require.Len(t, first.Unplaced, 1)
	assert.Equal(t, UnplacedSubject{ClassID: "Class_B", Subject: "Art", Teacher: "T2", Reason: ReasonNoRooms}, first.Unplaced[0])

	swapped, err := Generate(build("Class_B", "Class_A"))
	require.NoError(t, err)
	gridA, _ = swapped.Grid("Class_A")
	gridB, _ = swapped.Grid("Class_B")
	assert.Equal(t, "Art (R1)", gridB[Monday][0].String())
	assertAllFree(t, gridA)
	assert.Equal(t, "Class_B", swapped.Classes[0].ClassID)
}

func TestGenerateSubjectOrderIsPriority(t *testing.T) {
	build := func(subjects ...string) Input {
		return Input{
			Classes:       []ClassSubjects{{ClassID: "10A", Subjects: subjects}},
			TeacherOf:     map[string]string{"Physics": "T1", "Chemistry": "T1"},
			Rooms:         []string{"Lab"},
			PeriodsPerDay: 4,
			Availability:  map[string][]Slot{"T1": {{Day: Wednesday, Period: 2}}},
		}
	}

	result, err := Generate(build("Physics", "Chemistry"))
	require.NoError(t, err)
	grid, _ := result.Grid("10A")
	assert.Equal(t, "Physics (Lab)", grid[Wednesday][2].String())
	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, "Chemistry", result.Unplaced[0].Subject)

	result, err = Generate(build("Chemistry", "Physics"))
	require.NoError(t, err)
	grid, _ = result.Grid("10A")
	assert.Equal(t, "Chemistry (Lab)", grid[Wednesday][2].String())
	assert.Equal(t, "Physics", result.Unplaced[0].Subject)
}

func TestGenerateTeacherWithoutAvailability(t *testing.T) {
	result, err := Generate(Input{
		Classes: []ClassSubjects{
			{ClassID: "A", Subjects: []string{"History", "Math"}},
			{ClassID: "B", Subjects: []string{"History"}},
		},
		TeacherOf:     map[string]string{"History": "T9", "Math": "T1"},
		Rooms:         []string{"R1", "R2"},
		PeriodsPerDay: 3,
		Availability: map[string][]Slot{
			"T9": {},
			"T1": {{Day: Friday, Period: 2}},
		},
	})
	require.NoError(t, err)

	for _, class := range result.Classes {
		for _, row := range class.Grid {
			for _, cell := range row {
				assert.NotEqual(t, "History", cell.Subject)
			}
		}
	}
	require.Len(t, result.Unplaced, 2)
	for _, item := range result.Unplaced {
		assert.Equal(t, "History", item.Subject)
		assert.Equal(t, ReasonNoAvailability, item.Reason)
	}
	gridA, _ := result.Grid("A")
	assert.Equal(t, "Math (R1)", gridA[Friday][2].String())
}

func TestGenerateTeacherMissingFromAvailabilityMap(t *testing.T) {
	result, err := Generate(Input{
		Classes:       []ClassSubjects{{ClassID: "A", Subjects: []string{"Music"}}},
		TeacherOf:     map[string]string{"Music": "T5"},
		Rooms:         []string{"R1"},
		PeriodsPerDay: 2,
	})
	require.NoError(t, err)
	grid, _ := result.Grid("A")
	assertAllFree(t, grid)
	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, ReasonNoAvailability, result.Unplaced[0].Reason)
}

func TestGenerateMissingTeacherFailsRun(t *testing.T) {
	result, err := Generate(Input{
		Classes:       []ClassSubjects{{ClassID: "A", Subjects: []string{"Math", "Drama"}}},
		TeacherOf:     map[string]string{"Math": "T1"},
		Rooms:         []string{"R1"},
		PeriodsPerDay: 2,
		Availability:  map[string][]Slot{"T1": {{Day: Monday, Period: 0}}},
	})
	require.Error(t, err)
	assert.Nil(t, result)

	var missing *MissingTeacherError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Drama", missing.Subject)
	assert.Equal(t, "A", missing.ClassID)
}

func TestGenerateEmptyRoomPool(t *testing.T) {
	result, err := Generate(Input{
		Classes:       []ClassSubjects{{ClassID: "A", Subjects: []string{"Math"}}},
		TeacherOf:     map[string]string{"Math": "T1"},
		PeriodsPerDay: 2,
		Availability:  map[string][]Slot{"T1": {{Day: Monday, Period: 0}, {Day: Tuesday, Period: 1}}},
	})
	require.NoError(t, err)
	grid, _ := result.Grid("A")
	assertAllFree(t, grid)
	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, ReasonNoRooms, result.Unplaced[0].Reason)
}

func TestGenerateSkipsSlotWhenRoomsFull(t *testing.T) {
	result, err := Generate(Input{
		Classes: []ClassSubjects{
			{ClassID: "A", Subjects: []string{"Math"}},
			{ClassID: "B", Subjects: []string{"Art"}},
		},
		TeacherOf:     map[string]string{"Math": "T1", "Art": "T2"},
		Rooms:         []string{"R1"},
		PeriodsPerDay: 2,
		Availability: map[string][]Slot{
			"T1": {{Day: Monday, Period: 0}},
			"T2": {{Day: Monday, Period: 0}, {Day: Thursday, Period: 1}},
		},
	})
	require.NoError(t, err)
	gridB, _ := result.Grid("B")
	assert.True(t, gridB[Monday][0].Empty())
	assert.Equal(t, "Art (R1)", gridB[Thursday][1].String())
}

func TestGenerateUnplacedReasonDistinguishesRoomsFromSlots(t *testing.T) {
	result, err := Generate(Input{
		Classes: []ClassSubjects{
			{ClassID: "A", Subjects: []string{"Math", "Art"}},
			{ClassID: "B", Subjects: []string{"Music", "Drama"}},
		},
		TeacherOf:     map[string]string{"Math": "T1", "Art": "T2", "Music": "T3", "Drama": "T2"},
		Rooms:         []string{"R1"},
		PeriodsPerDay: 2,
		Availability: map[string][]Slot{
			"T1": {{Day: Monday, Period: 0}},
			"T2": {{Day: Monday, Period: 0}, {Day: Monday, Period: 1}},
			"T3": {{Day: Monday, Period: 0}},
		},
	})
	require.NoError(t, err)

	// Music only lost its slot to the room; Drama also hit its teacher's
	// Monday-P2 booking from class A.
	require.Len(t, result.Unplaced, 2)
	assert.Equal(t, "Music", result.Unplaced[0].Subject)
	assert.Equal(t, ReasonNoRooms, result.Unplaced[0].Reason)
	assert.Equal(t, "Drama", result.Unplaced[1].Subject)
	assert.Equal(t, ReasonSlotsExhausted, result.Unplaced[1].Reason)
}

func TestGenerateBlankSubjectStillOccupiesCell(t *testing.T) {
	result, err := Generate(Input{
		Classes:       []ClassSubjects{{ClassID: "A", Subjects: []string{"", "Math"}}},
		TeacherOf:     map[string]string{"": "T0", "Math": "T1"},
		Rooms:         []string{"R1", "R2"},
		PeriodsPerDay: 2,
		Availability: map[string][]Slot{
			"T0": {{Day: Monday, Period: 0}},
			"T1": {{Day: Monday, Period: 0}, {Day: Monday, Period: 1}},
		},
	})
	require.NoError(t, err)
	grid, _ := result.Grid("A")
	assert.False(t, grid[Monday][0].Empty())
	assert.Equal(t, " (R1)", grid[Monday][0].String())
	assert.Equal(t, "Math (R1)", grid[Monday][1].String())
	require.Len(t, result.Placements, 2)
	assert.NotEqual(t, result.Placements[0].Slot, result.Placements[1].Slot)
}

func TestGenerateSkipsBlankRooms(t *testing.T) {
	result, err := Generate(Input{
		Classes:       []ClassSubjects{{ClassID: "A", Subjects: []string{"Math"}}},
		TeacherOf:     map[string]string{"Math": "T1"},
		Rooms:         []string{"", "R2"},
		PeriodsPerDay: 1,
		Availability:  map[string][]Slot{"T1": {{Day: Monday, Period: 0}}},
	})
	require.NoError(t, err)
	grid, _ := result.Grid("A")
	assert.Equal(t, "Math (R2)", grid[Monday][0].String())
}

func TestGenerateFirstFreeRoomInPoolOrder(t *testing.T) {
	result, err := Generate(Input{
		Classes: []ClassSubjects{
			{ClassID: "A", Subjects: []string{"Math"}},
			{ClassID: "B", Subjects: []string{"Art"}},
		},
		TeacherOf:     map[string]string{"Math": "T1", "Art": "T2"},
		Rooms:         []string{"R3", "R1", "R2"},
		PeriodsPerDay: 1,
		Availability: map[string][]Slot{
			"T1": {{Day: Monday, Period: 0}},
			"T2": {{Day: Monday, Period: 0}},
		},
	})
	require.NoError(t, err)
	gridA, _ := result.Grid("A")
	gridB, _ := result.Grid("B")
	assert.Equal(t, "R3", gridA[Monday][0].Room)
	assert.Equal(t, "R1", gridB[Monday][0].Room)
}

func TestGenerateClassCannotDoubleBookItself(t *testing.T) {
	result, err := Generate(Input{
		Classes:       []ClassSubjects{{ClassID: "A", Subjects: []string{"Math", "Art"}}},
		TeacherOf:     map[string]string{"Math": "T1", "Art": "T2"},
		Rooms:         []string{"R1", "R2"},
		PeriodsPerDay: 2,
		Availability: map[string][]Slot{
			"T1": {{Day: Monday, Period: 0}},
			"T2": {{Day: Monday, Period: 0}, {Day: Monday, Period: 1}},
		},
	})
	require.NoError(t, err)
	grid, _ := result.Grid("A")
	assert.Equal(t, "Math (R1)", grid[Monday][0].String())
	assert.Equal(t, "Art (R1)", grid[Monday][1].String())
}

func TestGenerateRepeatedSubjectPlacedOncePerEntry(t *testing.T) {
	result, err := Generate(Input{
		Classes:       []ClassSubjects{{ClassID: "A", Subjects: []string{"Math", "Math"}}},
		TeacherOf:     map[string]string{"Math": "T1"},
		Rooms:         []string{"R1"},
		PeriodsPerDay: 2,
		Availability:  map[string][]Slot{"T1": {{Day: Monday, Period: 0}, {Day: Monday, Period: 1}, {Day: Tuesday, Period: 0}}},
	})
	require.NoError(t, err)
	grid, _ := result.Grid("A")
	assert.Equal(t, "Math (R1)", grid[Monday][0].String())
	assert.Equal(t, "Math (R1)", grid[Monday][1].String())
	assert.True(t, grid[Tuesday][0].Empty())
}

func TestGenerateRejectsDegenerateInput(t *testing.T) {
	_, err := Generate(Input{PeriodsPerDay: 0})
	assert.ErrorIs(t, err, ErrInvalidPeriods)

	_, err = Generate(Input{
		Classes:       []ClassSubjects{{ClassID: "A"}, {ClassID: "A"}},
		PeriodsPerDay: 1,
	})
	var dup *DuplicateClassError
	assert.True(t, errors.As(err, &dup))
}

func TestGenerateIgnoresAvailabilityOutsideGrid(t *testing.T) {
	result, err := Generate(Input{
		Classes:       []ClassSubjects{{ClassID: "A", Subjects: []string{"Math"}}},
		TeacherOf:     map[string]string{"Math": "T1"},
		Rooms:         []string{"R1"},
		PeriodsPerDay: 2,
		Availability:  map[string][]Slot{"T1": {{Day: Monday, Period: 5}, {Day: 7, Period: 0}}},
	})
	require.NoError(t, err)
	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, ReasonNoAvailability, result.Unplaced[0].Reason)
}

func TestGenerateInvariantsOnRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		in := randomInput(rng)
		result, err := Generate(in)
		require.NoError(t, err)

		again, err := Generate(in)
		require.NoError(t, err)
		assert.Equal(t, result, again, "generation must be deterministic")

		teacherSlots := map[string]map[Slot]string{}
		roomSlots := map[string]map[Slot]string{}
		placed := 0
		for _, class := range result.Classes {
			require.Len(t, class.Grid, DaysPerWeek)
			for day, row := range class.Grid {
				require.Len(t, row, in.PeriodsPerDay)
				for period, cell := range row {
					if cell.Empty() {
						continue
					}
					placed++
					slot := Slot{Day: Weekday(day), Period: period}
					teacher := in.TeacherOf[cell.Subject]

					assert.Contains(t, in.Availability[teacher], slot, "placement outside availability")

					if teacherSlots[teacher] == nil {
						teacherSlots[teacher] = map[Slot]string{}
					}
					_, clash := teacherSlots[teacher][slot]
					assert.False(t, clash, "teacher %s double booked at %s", teacher, slot.Label())
					teacherSlots[teacher][slot] = class.ClassID

					if roomSlots[cell.Room] == nil {
						roomSlots[cell.Room] = map[Slot]string{}
					}
					_, clash = roomSlots[cell.Room][slot]
					assert.False(t, clash, "room %s double booked at %s", cell.Room, slot.Label())
					roomSlots[cell.Room][slot] = class.ClassID
				}
			}
		}

		entries := 0
		for _, class := range in.Classes {
			entries += len(class.Subjects)
		}
		assert.Equal(t, placed, len(result.Placements))
		assert.Equal(t, entries, placed+len(result.Unplaced))
	}
}

func randomInput(rng *rand.Rand) Input {
	periods := 1 + rng.Intn(6)
	teachers := []string{"T1", "T2", "T3", "T4"}
	subjects := []string{"Math", "Physics", "Biology", "History", "Art", "Music", "English"}
	teacherOf := map[string]string{}
	for _, subject := range subjects {
		teacherOf[subject] = teachers[rng.Intn(len(teachers))]
	}
	availability := map[string][]Slot{}
	for _, teacher := range teachers {
		for day := Monday; day <= Friday; day++ {
			for period := 0; period < periods; period++ {
				if rng.Intn(3) == 0 {
					availability[teacher] = append(availability[teacher], Slot{Day: day, Period: period})
				}
			}
		}
	}
	rooms := []string{"R1", "R2", "R3"}[:1+rng.Intn(3)]
	classes := make([]ClassSubjects, 1+rng.Intn(5))
	for i := range classes {
		list := make([]string, 1+rng.Intn(len(subjects)))
		for j := range list {
			list[j] = subjects[rng.Intn(len(subjects))]
		}
		classes[i] = ClassSubjects{ClassID: fmt.Sprintf("Class_%c", 'A'+i), Subjects: list}
	}
	return Input{
		Classes:       classes,
		TeacherOf:     teacherOf,
		Rooms:         rooms,
		PeriodsPerDay: periods,
		Availability:  availability,
	}
}

func assertAllFree(t *testing.T, grid Grid) {
	t.Helper()
	for _, row := range grid {
		for _, cell := range row {
			assert.True(t, cell.Empty())
		}
	}
}
