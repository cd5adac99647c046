// Package scheduler places class subjects into a weekly (day, period) grid
// using greedy first-fit assignment with teacher and room occupancy tracking.
package scheduler

// FreeLabel is how an empty cell renders.
const FreeLabel = "Free"

// ClassSubjects is one class and its ordered subject list. List order is the
// placement priority within the class.
type ClassSubjects struct {
	ClassID  string   `json:"classId" yaml:"class"`
	Subjects []string `json:"subjects" yaml:"subjects"`
}

// Input is everything one generation run needs. Class order is the placement
// priority across classes and must be kept as supplied.
type Input struct {
	Classes       []ClassSubjects
	TeacherOf     map[string]string
	Rooms         []string
	PeriodsPerDay int
	Availability  map[string][]Slot
}

// Cell is one grid entry; the zero value is an empty (free) cell.
type Cell struct {
	Subject string `json:"subject,omitempty"`
	Room    string `json:"room,omitempty"`
}

// Empty reports whether nothing is scheduled in the cell. Every placement
// holds a room, so the room alone decides occupancy.
func (c Cell) Empty() bool {
	return c.Room == ""
}

func (c Cell) String() string {
	if c.Empty() {
		return FreeLabel
	}
	return c.Subject + " (" + c.Room + ")"
}

// Grid is indexed [day][period].
type Grid [][]Cell

func newGrid(periodsPerDay int) Grid {
	grid := make(Grid, DaysPerWeek)
	for day := range grid {
		grid[day] = make([]Cell, periodsPerDay)
	}
	return grid
}

// At returns the cell at slot, or an empty cell when slot is outside the grid.
func (g Grid) At(slot Slot) Cell {
	if slot.Day < 0 || int(slot.Day) >= len(g) || slot.Period < 0 || slot.Period >= len(g[slot.Day]) {
		return Cell{}
	}
	return g[slot.Day][slot.Period]
}

// ClassTimetable is the generated grid for one class.
type ClassTimetable struct {
	ClassID string `json:"classId"`
	Grid    Grid   `json:"grid"`
}

// Unplaced reasons.
const (
	ReasonNoAvailability = "NO_AVAILABILITY"
	ReasonNoRooms        = "NO_ROOMS"
	ReasonSlotsExhausted = "SLOTS_EXHAUSTED"
)

// UnplacedSubject describes a (class, subject) entry that received no slot.
type UnplacedSubject struct {
	ClassID string `json:"classId"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Reason  string `json:"reason"`
}

// Placement is a committed assignment.
type Placement struct {
	ClassID string `json:"classId"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
	Slot    Slot   `json:"slot"`
}

// Result holds the grids in input class order plus diagnostics. Unplaced
// subjects never appear in any grid; Unplaced lists them explicitly.
type Result struct {
	PeriodsPerDay int
	Classes       []ClassTimetable
	Placements    []Placement
	Unplaced      []UnplacedSubject
}

// Grid looks up a class grid by id.
func (r *Result) Grid(classID string) (Grid, bool) {
	for _, class := range r.Classes {
		if class.ClassID == classID {
			return class.Grid, true
		}
	}
	return nil, false
}

// generationRun owns all mutable state of a single Generate call.
type generationRun struct {
	input     Input
	available map[string]slotSet
	teachers  *occupancy
	rooms     *occupancy
	result    *Result
}

// Generate builds a timetable for every class in input order. It fails only
// on malformed input or a subject without a teacher; subjects that cannot be
// placed are reported in Result.Unplaced and leave their cells empty.
func Generate(in Input) (*Result, error) {
	if in.PeriodsPerDay <= 0 {
		return nil, ErrInvalidPeriods
	}
	run := newGenerationRun(in)
	seen := make(map[string]struct{}, len(in.Classes))
	for _, class := range in.Classes {
		if _, dup := seen[class.ClassID]; dup {
			return nil, &DuplicateClassError{ClassID: class.ClassID}
		}
		seen[class.ClassID] = struct{}{}

		grid := newGrid(in.PeriodsPerDay)
		run.result.Classes = append(run.result.Classes, ClassTimetable{ClassID: class.ClassID, Grid: grid})
		for _, subject := range class.Subjects {
			if err := run.assignSubject(class.ClassID, grid, subject); err != nil {
				return nil, err
			}
		}
	}
	return run.result, nil
}

func newGenerationRun(in Input) *generationRun {
	available := make(map[string]slotSet, len(in.Availability))
	for teacher, slots := range in.Availability {
		set := newSlotSet(in.PeriodsPerDay)
		for _, slot := range slots {
			set.Add(slot)
		}
		available[teacher] = set
	}
	return &generationRun{
		input:     in,
		available: available,
		teachers:  newOccupancy(in.PeriodsPerDay),
		rooms:     newOccupancy(in.PeriodsPerDay),
		result:    &Result{PeriodsPerDay: in.PeriodsPerDay},
	}
}

func (r *generationRun) assignSubject(classID string, grid Grid, subject string) error {
	teacher, ok := r.input.TeacherOf[subject]
	if !ok {
		return &MissingTeacherError{ClassID: classID, Subject: subject}
	}
	window := r.available[teacher]

	// roomBlocked: an otherwise usable slot had no free room.
	// slotBlocked: a slot in the window was taken by the class or the teacher.
	roomBlocked, slotBlocked := false, false
	for day := Monday; day <= Friday; day++ {
		for period := 0; period < r.input.PeriodsPerDay; period++ {
			slot := Slot{Day: day, Period: period}
			if !window.Has(slot) {
				continue
			}
			if !grid[day][period].Empty() || r.teachers.Busy(teacher, slot) {
				slotBlocked = true
				continue
			}
			room, found := r.freeRoom(slot)
			if !found {
				roomBlocked = true
				continue
			}
			grid[day][period] = Cell{Subject: subject, Room: room}
			r.teachers.Reserve(teacher, slot)
			r.rooms.Reserve(room, slot)
			r.result.Placements = append(r.result.Placements, Placement{
				ClassID: classID,
				Subject: subject,
				Teacher: teacher,
				Room:    room,
				Slot:    slot,
			})
			return nil
		}
	}

	reason := ReasonSlotsExhausted
	switch {
	case window.Len() == 0:
		reason = ReasonNoAvailability
	case roomBlocked && !slotBlocked:
		reason = ReasonNoRooms
	}
	r.result.Unplaced = append(r.result.Unplaced, UnplacedSubject{
		ClassID: classID,
		Subject: subject,
		Teacher: teacher,
		Reason:  reason,
	})
	return nil
}

func (r *generationRun) freeRoom(slot Slot) (string, bool) {
	for _, room := range r.input.Rooms {
		if room == "" {
			continue
		}
		if !r.rooms.Busy(room, slot) {
			return room, true
		}
	}
	return "", false
}
