package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

type catalogReader interface {
	ListClassSubjects(ctx context.Context, classIDs []string) ([]models.ClassSubjectRow, error)
	ListSubjectTeachers(ctx context.Context) ([]models.SubjectTeacherRow, error)
	ListRooms(ctx context.Context) ([]models.RoomRow, error)
	ListAvailability(ctx context.Context) ([]models.TeacherAvailabilityRow, error)
}

type generationRecorder interface {
	ObserveGeneration(outcome string, duration time.Duration, placed, unplaced int)
}

// Renderer turns export datasets into a downloadable document.
type Renderer interface {
	Render(datasets ...export.Dataset) ([]byte, error)
	ContentType() string
}

// TimetableGeneratorConfig bounds generation requests.
type TimetableGeneratorConfig struct {
	MaxClasses           int
	MaxSubjectsPerClass  int
	MaxPeriodsPerDay     int
	DefaultPeriodsPerDay int
	CatalogTimeout       time.Duration
}

// TimetableGeneratorService validates generation input, runs the scheduler and
// renders the result. It keeps no state between runs.
type TimetableGeneratorService struct {
	catalog   catalogReader
	validator *validator.Validate
	logger    *zap.Logger
	metrics   generationRecorder
	renderers map[string]Renderer
	config    TimetableGeneratorConfig
	now       func() time.Time
}

// NewTimetableGeneratorService wires generator dependencies. catalog and
// metrics may be nil.
func NewTimetableGeneratorService(
	catalog catalogReader,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics generationRecorder,
	renderers map[string]Renderer,
	cfg TimetableGeneratorConfig,
) *TimetableGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxClasses <= 0 {
		cfg.MaxClasses = 64
	}
	if cfg.MaxSubjectsPerClass <= 0 {
		cfg.MaxSubjectsPerClass = 128
	}
	if cfg.MaxPeriodsPerDay <= 0 {
		cfg.MaxPeriodsPerDay = 16
	}
	if cfg.DefaultPeriodsPerDay <= 0 {
		cfg.DefaultPeriodsPerDay = 6
	}
	if cfg.CatalogTimeout <= 0 {
		cfg.CatalogTimeout = 10 * time.Second
	}
	if renderers == nil {
		renderers = map[string]Renderer{}
	}
	return &TimetableGeneratorService{
		catalog:   catalog,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		renderers: renderers,
		config:    cfg,
		now:       time.Now,
	}
}

// Generate runs the scheduler on an explicit payload.
func (s *TimetableGeneratorService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCanceled.Code, appErrors.ErrCanceled.Status, "generation canceled")
	}
	input, err := s.inputFromRequest(req)
	if err != nil {
		s.observe(OutcomeInvalid, 0, 0, 0)
		return nil, err
	}
	return s.run(ctx, input)
}

// GenerateFromCatalog loads classes, subjects, teachers, rooms and availability
// from the catalog database and runs the scheduler.
func (s *TimetableGeneratorService) GenerateFromCatalog(ctx context.Context, req dto.CatalogTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "catalog source is not configured")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid catalog generation payload")
	}
	periods := req.PeriodsPerDay
	if periods == 0 {
		periods = s.config.DefaultPeriodsPerDay
	}
	if periods > s.config.MaxPeriodsPerDay {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("periodsPerDay exceeds limit of %d", s.config.MaxPeriodsPerDay))
	}

	loadCtx, cancel := context.WithTimeout(ctx, s.config.CatalogTimeout)
	defer cancel()
	input, err := s.loadCatalogInput(loadCtx, req.ClassIDs, periods)
	if err != nil {
		return nil, err
	}
	if err := s.checkLimits(input); err != nil {
		return nil, err
	}
	return s.run(ctx, input)
}

// Export generates a timetable and renders it in the requested format.
func (s *TimetableGeneratorService) Export(ctx context.Context, req dto.ExportTimetableRequest) (*dto.ExportedFile, error) {
	if _, err := s.renderer(req.Format); err != nil {
		return nil, err
	}
	result, err := s.Generate(ctx, req.Request)
	if err != nil {
		return nil, err
	}
	return s.RenderFile(result, req.Format)
}

// RenderFile renders an already generated timetable. CSV output is a single
// table with a Class column; PDF output has one page per class.
func (s *TimetableGeneratorService) RenderFile(result *dto.GenerateTimetableResponse, format string) (*dto.ExportedFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	format = normalizeFormat(format)

	var datasets []export.Dataset
	if format == "csv" {
		datasets = []export.Dataset{combinedDataset(result)}
	} else {
		datasets = classDatasets(result)
	}
	data, err := renderer.Render(datasets...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	return &dto.ExportedFile{
		RunID:       result.RunID,
		FileName:    fmt.Sprintf("timetable-%s.%s", result.RunID, format),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func (s *TimetableGeneratorService) renderer(format string) (Renderer, error) {
	format = normalizeFormat(format)
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	return renderer, nil
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

func (s *TimetableGeneratorService) run(ctx context.Context, input scheduler.Input) (*dto.GenerateTimetableResponse, error) {
	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID))
	if reqID := requestid.FromContext(ctx); reqID != "" {
		log = log.With(zap.String("request_id", reqID))
	}

	start := s.now()
	result, err := scheduler.Generate(input)
	duration := s.now().Sub(start)
	if err != nil {
		var missing *scheduler.MissingTeacherError
		if errors.As(err, &missing) {
			s.observe(OutcomeMissingTeacher, duration, 0, 0)
			log.Warn("timetable generation aborted", zap.String("class_id", missing.ClassID), zap.String("subject", missing.Subject))
			return nil, appErrors.Wrap(err, appErrors.ErrMissingTeacher.Code, appErrors.ErrMissingTeacher.Status,
				fmt.Sprintf("subject %s in class %s has no teacher assigned", missing.Subject, missing.ClassID))
		}
		s.observe(OutcomeInvalid, duration, 0, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	placed, unplaced := len(result.Placements), len(result.Unplaced)
	outcome := OutcomeComplete
	if unplaced > 0 {
		outcome = OutcomePartial
		log.Warn("timetable has unplaced subjects", zap.Int("unplaced", unplaced))
	}
	s.observe(outcome, duration, placed, unplaced)
	log.Info("timetable generated",
		zap.Int("classes", len(result.Classes)),
		zap.Int("placed", placed),
		zap.Int("unplaced", unplaced),
		zap.Duration("duration", duration),
	)

	return buildResponse(runID, input, result, duration, s.now().UTC()), nil
}

func (s *TimetableGeneratorService) observe(outcome string, duration time.Duration, placed, unplaced int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveGeneration(outcome, duration, placed, unplaced)
}

func (s *TimetableGeneratorService) inputFromRequest(raw dto.GenerateTimetableRequest) (scheduler.Input, error) {
	req, err := normalizeRequest(raw)
	if err != nil {
		return scheduler.Input{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return scheduler.Input{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}

	input := scheduler.Input{
		Classes:       make([]scheduler.ClassSubjects, 0, len(req.Classes)),
		TeacherOf:     req.TeacherOf,
		Rooms:         req.Rooms,
		PeriodsPerDay: req.PeriodsPerDay,
		Availability:  make(map[string][]scheduler.Slot),
	}
	for _, class := range req.Classes {
		input.Classes = append(input.Classes, scheduler.ClassSubjects{ClassID: class.ClassID, Subjects: class.Subjects})
	}
	for teacher, labels := range req.Availability {
		for _, label := range labels {
			slot, err := scheduler.ParseSlotLabel(label)
			if err != nil {
				return scheduler.Input{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid availability for teacher %s", teacher))
			}
			input.Availability[teacher] = append(input.Availability[teacher], slot)
		}
	}
	for teacher, slots := range req.AvailabilitySlots {
		for _, slot := range slots {
			input.Availability[teacher] = append(input.Availability[teacher], scheduler.Slot{Day: scheduler.Weekday(slot.Day), Period: slot.Period})
		}
	}

	if err := s.checkLimits(input); err != nil {
		return scheduler.Input{}, err
	}
	return input, nil
}

// normalizeRequest trims every name so validation sees the values the
// scheduler will use. Subject keys that collide after trimming are rejected;
// availability entries for the same teacher are merged.
func normalizeRequest(req dto.GenerateTimetableRequest) (dto.GenerateTimetableRequest, error) {
	out := dto.GenerateTimetableRequest{
		Rooms:         trimAll(req.Rooms),
		PeriodsPerDay: req.PeriodsPerDay,
	}
	if req.Classes != nil {
		out.Classes = make([]dto.ClassSubjectsRequest, 0, len(req.Classes))
		for _, class := range req.Classes {
			out.Classes = append(out.Classes, dto.ClassSubjectsRequest{
				ClassID:  strings.TrimSpace(class.ClassID),
				Subjects: trimAll(class.Subjects),
			})
		}
	}
	if req.TeacherOf != nil {
		out.TeacherOf = make(map[string]string, len(req.TeacherOf))
		for subject, teacher := range req.TeacherOf {
			key := strings.TrimSpace(subject)
			if _, dup := out.TeacherOf[key]; dup {
				return out, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %q is mapped more than once", key))
			}
			out.TeacherOf[key] = strings.TrimSpace(teacher)
		}
	}
	if req.Availability != nil {
		out.Availability = make(map[string][]string, len(req.Availability))
		for teacher, labels := range req.Availability {
			key := strings.TrimSpace(teacher)
			out.Availability[key] = append(out.Availability[key], labels...)
		}
	}
	if req.AvailabilitySlots != nil {
		out.AvailabilitySlots = make(map[string][]dto.SlotRequest, len(req.AvailabilitySlots))
		for teacher, slots := range req.AvailabilitySlots {
			key := strings.TrimSpace(teacher)
			out.AvailabilitySlots[key] = append(out.AvailabilitySlots[key], slots...)
		}
	}
	return out, nil
}

func (s *TimetableGeneratorService) checkLimits(input scheduler.Input) error {
	if input.PeriodsPerDay > s.config.MaxPeriodsPerDay {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("periodsPerDay exceeds limit of %d", s.config.MaxPeriodsPerDay))
	}
	if len(input.Classes) > s.config.MaxClasses {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("classes exceeds limit of %d", s.config.MaxClasses))
	}
	seen := make(map[string]struct{}, len(input.Classes))
	for _, class := range input.Classes {
		if _, dup := seen[class.ClassID]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class %s is listed more than once", class.ClassID))
		}
		seen[class.ClassID] = struct{}{}
		if len(class.Subjects) > s.config.MaxSubjectsPerClass {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class %s exceeds limit of %d subjects", class.ClassID, s.config.MaxSubjectsPerClass))
		}
	}
	teachers := make([]string, 0, len(input.Availability))
	for teacher := range input.Availability {
		teachers = append(teachers, teacher)
	}
	sort.Strings(teachers)
	for _, teacher := range teachers {
		for _, slot := range input.Availability[teacher] {
			if slot.Period >= input.PeriodsPerDay {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("availability %s for teacher %s is outside %d periods per day", slot.Label(), teacher, input.PeriodsPerDay))
			}
		}
	}
	return nil
}

func (s *TimetableGeneratorService) loadCatalogInput(ctx context.Context, classIDs []string, periods int) (scheduler.Input, error) {
	wrap := func(err error, message string) error {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return appErrors.Wrap(err, appErrors.ErrCanceled.Code, appErrors.ErrCanceled.Status, message)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}

	rows, err := s.catalog.ListClassSubjects(ctx, classIDs)
	if err != nil {
		return scheduler.Input{}, wrap(err, "failed to load class subjects")
	}
	teachers, err := s.catalog.ListSubjectTeachers(ctx)
	if err != nil {
		return scheduler.Input{}, wrap(err, "failed to load subject teachers")
	}
	rooms, err := s.catalog.ListRooms(ctx)
	if err != nil {
		return scheduler.Input{}, wrap(err, "failed to load rooms")
	}
	availability, err := s.catalog.ListAvailability(ctx)
	if err != nil {
		return scheduler.Input{}, wrap(err, "failed to load teacher availability")
	}

	input := scheduler.Input{
		TeacherOf:     make(map[string]string, len(teachers)),
		Rooms:         make([]string, 0, len(rooms)),
		PeriodsPerDay: periods,
		Availability:  make(map[string][]scheduler.Slot),
	}
	index := make(map[string]int)
	for _, row := range rows {
		pos, ok := index[row.ClassID]
		if !ok {
			pos = len(input.Classes)
			index[row.ClassID] = pos
			input.Classes = append(input.Classes, scheduler.ClassSubjects{ClassID: row.ClassID})
		}
		input.Classes[pos].Subjects = append(input.Classes[pos].Subjects, row.Subject)
	}
	var missing []string
	for _, id := range classIDs {
		if _, ok := index[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return scheduler.Input{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no subjects found for classes: %s", strings.Join(missing, ", ")))
	}
	if len(input.Classes) == 0 {
		return scheduler.Input{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "catalog has no class subjects")
	}

	for _, row := range teachers {
		input.TeacherOf[row.Subject] = row.TeacherID
	}
	for _, row := range rooms {
		input.Rooms = append(input.Rooms, row.ID)
	}
	for _, row := range availability {
		// Rows for periods beyond the requested day length are not usable in this run.
		if row.Period >= periods {
			continue
		}
		input.Availability[row.TeacherID] = append(input.Availability[row.TeacherID], scheduler.Slot{Day: scheduler.Weekday(row.Day), Period: row.Period})
	}
	return input, nil
}

func buildResponse(runID string, input scheduler.Input, result *scheduler.Result, duration time.Duration, generatedAt time.Time) *dto.GenerateTimetableResponse {
	days := scheduler.DayNames()
	assignments := make(map[string][]dto.TimetableCellView, len(result.Classes))
	for _, p := range result.Placements {
		assignments[p.ClassID] = append(assignments[p.ClassID], dto.TimetableCellView{
			Day:     int(p.Slot.Day),
			Period:  p.Slot.Period,
			Label:   p.Slot.Label(),
			Subject: p.Subject,
			Teacher: p.Teacher,
			Room:    p.Room,
		})
	}

	classes := make([]dto.ClassTimetableView, 0, len(result.Classes))
	for _, class := range result.Classes {
		rows := make([]dto.TimetableRow, 0, len(class.Grid))
		for day, cells := range class.Grid {
			periods := make([]string, len(cells))
			for i, cell := range cells {
				periods[i] = cell.String()
			}
			rows = append(rows, dto.TimetableRow{Day: days[day], Periods: periods})
		}
		views := assignments[class.ClassID]
		sort.SliceStable(views, func(i, j int) bool {
			if views[i].Day == views[j].Day {
				return views[i].Period < views[j].Period
			}
			return views[i].Day < views[j].Day
		})
		if views == nil {
			views = []dto.TimetableCellView{}
		}
		classes = append(classes, dto.ClassTimetableView{ClassID: class.ClassID, Rows: rows, Assignments: views})
	}

	unplaced := make([]dto.UnplacedSubjectView, 0, len(result.Unplaced))
	for _, u := range result.Unplaced {
		unplaced = append(unplaced, dto.UnplacedSubjectView{ClassID: u.ClassID, Subject: u.Subject, Teacher: u.Teacher, Reason: u.Reason})
	}

	requested := 0
	for _, class := range input.Classes {
		requested += len(class.Subjects)
	}

	return &dto.GenerateTimetableResponse{
		RunID:         runID,
		PeriodsPerDay: result.PeriodsPerDay,
		Days:          days,
		Classes:       classes,
		Unplaced:      unplaced,
		Stats: dto.GenerationStats{
			Classes:    len(result.Classes),
			Requested:  requested,
			Placed:     len(result.Placements),
			Unplaced:   len(result.Unplaced),
			Duration:   duration,
			DurationMs: float64(duration) / float64(time.Millisecond),
		},
		GeneratedAt: generatedAt,
	}
}

func periodHeaders(periods int) []string {
	headers := make([]string, periods)
	for i := range headers {
		headers[i] = fmt.Sprintf("P%d", i+1)
	}
	return headers
}

func classDatasets(resp *dto.GenerateTimetableResponse) []export.Dataset {
	headers := append([]string{"Day"}, periodHeaders(resp.PeriodsPerDay)...)
	datasets := make([]export.Dataset, 0, len(resp.Classes))
	for _, class := range resp.Classes {
		datasets = append(datasets, export.Dataset{
			Title:   class.ClassID,
			Headers: headers,
			Rows:    timetableRows(class, headers[1:]),
		})
	}
	return datasets
}

func combinedDataset(resp *dto.GenerateTimetableResponse) export.Dataset {
	periods := periodHeaders(resp.PeriodsPerDay)
	headers := append([]string{"Class", "Day"}, periods...)
	var rows []map[string]string
	for _, class := range resp.Classes {
		for _, row := range timetableRows(class, periods) {
			row["Class"] = class.ClassID
			rows = append(rows, row)
		}
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func timetableRows(class dto.ClassTimetableView, periods []string) []map[string]string {
	rows := make([]map[string]string, 0, len(class.Rows))
	for _, row := range class.Rows {
		record := map[string]string{"Day": row.Day}
		for i, header := range periods {
			if i < len(row.Periods) {
				record[header] = row.Periods[i]
			}
		}
		rows = append(rows, record)
	}
	return rows
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
