package models

// ClassSubjectRow is one entry of a class subject list as stored in the catalog.
type ClassSubjectRow struct {
	ClassID  string `db:"class_id"`
	Subject  string `db:"subject"`
	Position int    `db:"position"`
}

// SubjectTeacherRow maps a subject to the teacher who teaches it everywhere.
type SubjectTeacherRow struct {
	Subject   string `db:"subject"`
	TeacherID string `db:"teacher_id"`
}

// RoomRow is a bookable room.
type RoomRow struct {
	ID       string `db:"id"`
	Position int    `db:"position"`
}

// TeacherAvailabilityRow is one slot a teacher declared usable. Day is 0 for
// Monday through 4 for Friday and Period is zero based.
type TeacherAvailabilityRow struct {
	TeacherID string `db:"teacher_id"`
	Day       int    `db:"day_of_week"`
	Period    int    `db:"period"`
}
