package importer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultLevel    = "beginner"
	DefaultCategory = "General"
)

// CourseDraft is the in-memory reconstruction of one course from flat rows.
// Drafts live only for the duration of a single import request.
type CourseDraft struct {
	Key         string
	Slug        string
	Title       string
	Description string
	Thumbnail   string
	Level       string
	Category    string

	modules     map[string]*ModuleDraft
	moduleOrder []string
}

func (c *CourseDraft) Modules() []*ModuleDraft {
	out := make([]*ModuleDraft, 0, len(c.moduleOrder))
	for _, key := range c.moduleOrder {
		out = append(out, c.modules[key])
	}
	return out
}

type ModuleDraft struct {
	Key   string
	Title string
	// Order is the sort key captured from the input; Position is the
	// sequential 1..n value actually persisted.
	Order    int
	Position int
	Lessons  []*LessonDraft

	seenLessons map[string]struct{}
}

type LessonDraft struct {
	Title    string
	Order    int
	Position int
	VideoURL string
	Content  string
	// DurationMinutes is zero when the input had no parseable duration.
	DurationMinutes int
}

// Builder folds parsed rows into course drafts keyed by natural key, keeping
// insertion order. Each request owns its own Builder; there is no shared
// state.
type Builder struct {
	courses map[string]*CourseDraft
	order   []string
	errors  []string
}

func NewBuilder() *Builder {
	return &Builder{courses: make(map[string]*CourseDraft)}
}

// Add places one row into the hierarchy. Rows missing any of the three
// identity titles are rejected and recorded; processing continues.
func (b *Builder) Add(row Row) {
	courseTitle := row.Get(FieldCourseTitle)
	moduleTitle := row.Get(FieldModuleTitle)
	lessonTitle := row.Get(FieldLessonTitle)

	switch {
	case courseTitle == "":
		b.errors = append(b.errors, fmt.Sprintf("row %d: course title is required", row.Line))
		return
	case moduleTitle == "":
		b.errors = append(b.errors, fmt.Sprintf("row %d: module title is required", row.Line))
		return
	case lessonTitle == "":
		b.errors = append(b.errors, fmt.Sprintf("row %d: lesson title is required", row.Line))
		return
	}

	course := b.course(row, courseTitle)
	module := course.module(row, moduleTitle)
	module.addLesson(row, lessonTitle)
}

func (b *Builder) course(row Row, title string) *CourseDraft {
	slug := row.Get(FieldCourseSlug)
	if slug == "" {
		slug = Slugify(title)
	} else {
		slug = Slugify(slug)
	}
	key := row.Get(FieldCourseID)
	if key == "" {
		key = slug
	}

	if existing, ok := b.courses[key]; ok {
		// Descriptive fields are captured from the first row that named this
		// course; later rows never overwrite them.
		return existing
	}

	draft := &CourseDraft{
		Key:         key,
		Slug:        slug,
		Title:       title,
		Description: row.Get(FieldCourseDescription),
		Thumbnail:   row.Get(FieldCourseThumbnail),
		Level:       normalizeLevel(row.Get(FieldCourseLevel)),
		Category:    row.Get(FieldCourseCategory),
		modules:     make(map[string]*ModuleDraft),
	}
	if draft.Category == "" {
		draft.Category = DefaultCategory
	}
	b.courses[key] = draft
	b.order = append(b.order, key)
	return draft
}

func (c *CourseDraft) module(row Row, title string) *ModuleDraft {
	order, hasOrder := parseOrder(row.Get(FieldModuleOrder))

	key := row.Get(FieldModuleID)
	if key == "" {
		key = strings.ToLower(title)
		if hasOrder {
			// Same-titled modules at different stated positions stay
			// distinct; without a stated order the title is the identity.
			key = fmt.Sprintf("%s|%d", key, order)
		}
	}

	if existing, ok := c.modules[key]; ok {
		return existing
	}
	if !hasOrder {
		order = len(c.moduleOrder) + 1
	}
	module := &ModuleDraft{
		Key:         key,
		Title:       title,
		Order:       order,
		seenLessons: make(map[string]struct{}),
	}
	c.modules[key] = module
	c.moduleOrder = append(c.moduleOrder, key)
	return module
}

func (m *ModuleDraft) addLesson(row Row, title string) {
	if id := row.Get(FieldLessonID); id != "" {
		if _, dup := m.seenLessons[id]; dup {
			// Duplicates are expected from denormalized source exports and
			// dropped without an error entry.
			return
		}
		m.seenLessons[id] = struct{}{}
	}

	order, hasOrder := parseOrder(row.Get(FieldLessonOrder))
	if !hasOrder {
		order = len(m.Lessons) + 1
	}

	lesson := &LessonDraft{
		Title:   title,
		Order:   order,
		Content: row.Get(FieldLessonContent),
	}
	if url, ok := ExtractVideoURL(row.Get(FieldLessonVideo)); ok {
		lesson.VideoURL = url
	}
	if minutes, ok := parseDuration(row.Get(FieldLessonDuration)); ok {
		lesson.DurationMinutes = minutes
	}
	m.Lessons = append(m.Lessons, lesson)
}

// Courses finalizes and returns the drafts in first-seen order. Modules and
// lessons are stably re-sorted by their captured order values and renumbered
// sequentially from 1; the input order values are a sort key only.
func (b *Builder) Courses() []*CourseDraft {
	out := make([]*CourseDraft, 0, len(b.order))
	for _, key := range b.order {
		course := b.courses[key]
		modules := course.Modules()
		sort.SliceStable(modules, func(i, j int) bool { return modules[i].Order < modules[j].Order })
		course.moduleOrder = course.moduleOrder[:0]
		for pos, module := range modules {
			module.Position = pos + 1
			course.moduleOrder = append(course.moduleOrder, module.Key)
			sort.SliceStable(module.Lessons, func(i, j int) bool {
				return module.Lessons[i].Order < module.Lessons[j].Order
			})
			for lpos, lesson := range module.Lessons {
				lesson.Position = lpos + 1
			}
		}
		out = append(out, course)
	}
	return out
}

// Errors returns row-level rejections in the order encountered.
func (b *Builder) Errors() []string {
	return b.errors
}

func parseOrder(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return value, true
}

func normalizeLevel(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "beginner", "principiante":
		return "beginner"
	case "intermediate", "intermedio":
		return "intermediate"
	case "advanced", "avanzado":
		return "advanced"
	default:
		return DefaultLevel
	}
}

// parseDuration accepts plain minutes ("90") or clock notation ("1:30",
// "01:30:00"). Unparseable values are ignored rather than rejected.
func parseDuration(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if minutes, err := strconv.Atoi(raw); err == nil && minutes >= 0 {
		return minutes, true
	}
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 {
			return 0, false
		}
		values = append(values, v)
	}
	// HH:MM or HH:MM:SS; seconds are dropped.
	return values[0]*60 + values[1], true
}
