package dto

import "time"

// ClassSubjectsRequest lists the subjects of one class in placement priority order.
type ClassSubjectsRequest struct {
	ClassID  string   `json:"classId" yaml:"classId" validate:"required"`
	Subjects []string `json:"subjects" yaml:"subjects" validate:"required,min=1,dive,required"`
}

// SlotRequest is a structured (day, period) pair; both are zero based.
type SlotRequest struct {
	Day    int `json:"day" yaml:"day" validate:"min=0,max=4"`
	Period int `json:"period" yaml:"period" validate:"min=0"`
}

// GenerateTimetableRequest carries a full generation input. Availability may
// use "Monday-P1" labels, structured slots, or both.
type GenerateTimetableRequest struct {
	Classes           []ClassSubjectsRequest   `json:"classes" yaml:"classes" validate:"required,min=1,dive"`
	TeacherOf         map[string]string        `json:"teacherOf" yaml:"teacherOf" validate:"required,min=1,dive,keys,required,endkeys,required"`
	Rooms             []string                 `json:"rooms" yaml:"rooms" validate:"omitempty,unique,dive,required"`
	PeriodsPerDay     int                      `json:"periodsPerDay" yaml:"periodsPerDay" validate:"required,min=1"`
	Availability      map[string][]string      `json:"availability" yaml:"availability" validate:"omitempty,dive,keys,required,endkeys,dive,required"`
	AvailabilitySlots map[string][]SlotRequest `json:"availabilitySlots" yaml:"availabilitySlots" validate:"omitempty,dive,keys,required,endkeys,dive"`
}

// CatalogTimetableRequest generates from the catalog database. Empty ClassIDs
// means every class.
type CatalogTimetableRequest struct {
	ClassIDs      []string `json:"classIds" validate:"omitempty,dive,required"`
	PeriodsPerDay int      `json:"periodsPerDay" validate:"omitempty,min=1"`
}

// ExportTimetableRequest renders a generated timetable as a file.
type ExportTimetableRequest struct {
	Format  string                   `json:"format" validate:"required,oneof=csv pdf"`
	Request GenerateTimetableRequest `json:"request"`
}

// TimetableRow is one day of a class timetable, rendered for display.
type TimetableRow struct {
	Day     string   `json:"day"`
	Periods []string `json:"periods"`
}

// TimetableCellView is one filled cell with its coordinates.
type TimetableCellView struct {
	Day     int    `json:"day"`
	Period  int    `json:"period"`
	Label   string `json:"label"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
}

// ClassTimetableView is a class grid.
type ClassTimetableView struct {
	ClassID     string              `json:"classId"`
	Rows        []TimetableRow      `json:"rows"`
	Assignments []TimetableCellView `json:"assignments"`
}

// UnplacedSubjectView reports a subject that received no slot.
type UnplacedSubjectView struct {
	ClassID string `json:"classId"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Reason  string `json:"reason"`
}

// GenerationStats summarises a run.
type GenerationStats struct {
	Classes    int           `json:"classes"`
	Requested  int           `json:"requested"`
	Placed     int           `json:"placed"`
	Unplaced   int           `json:"unplaced"`
	Duration   time.Duration `json:"-"`
	DurationMs float64       `json:"durationMs"`
}

// GenerateTimetableResponse is the rendered result of one run.
type GenerateTimetableResponse struct {
	RunID         string                `json:"runId"`
	PeriodsPerDay int                   `json:"periodsPerDay"`
	Days          []string              `json:"days"`
	Classes       []ClassTimetableView  `json:"classes"`
	Unplaced      []UnplacedSubjectView `json:"unplaced"`
	Stats         GenerationStats       `json:"stats"`
	GeneratedAt   time.Time             `json:"generatedAt"`
}

// ExportedFile is a rendered download.
type ExportedFile struct {
	RunID       string
	FileName    string
	ContentType string
	Data        []byte
}
