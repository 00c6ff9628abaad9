package importer

// Field names a column can map to after alias resolution. Every variant
// resolves its headers into this one canonical set so the hierarchy builder
// never has to know which export tool produced the file.
type Field string

const (
	FieldCourseID          Field = "course_id"
	FieldCourseTitle       Field = "course_title"
	FieldCourseSlug        Field = "course_slug"
	FieldCourseDescription Field = "course_description"
	FieldCourseThumbnail   Field = "course_thumbnail"
	FieldCourseLevel       Field = "course_level"
	FieldCourseCategory    Field = "course_category"

	FieldModuleID    Field = "module_id"
	FieldModuleTitle Field = "module_title"
	FieldModuleOrder Field = "module_order"

	FieldLessonID       Field = "lesson_id"
	FieldLessonTitle    Field = "lesson_title"
	FieldLessonOrder    Field = "lesson_order"
	FieldLessonContent  Field = "lesson_content"
	FieldLessonVideo    Field = "lesson_video"
	FieldLessonDuration Field = "lesson_duration"

	// Parent links only exist in the legacy multi-file exports, where topics
	// and lessons reference their container by post id.
	FieldParentID Field = "parent_id"
)

// Schema describes how one upload variant maps raw headers onto canonical
// fields. Aliases are matched after header normalization (lowercase, trimmed,
// spaces and dashes folded to underscores).
type Schema struct {
	Name           string
	Aliases        map[Field][]string
	Required       []Field
	SniffDelimiter bool
}

// GenericSchema covers the platform's own CSV template plus the common
// spreadsheet-tool variations of those column names.
func GenericSchema() Schema {
	return Schema{
		Name: "generic",
		Aliases: map[Field][]string{
			FieldCourseID:          {"course_id", "course_external_id"},
			FieldCourseTitle:       {"course_title", "course", "course_name"},
			FieldCourseSlug:        {"course_slug", "slug"},
			FieldCourseDescription: {"course_description", "description"},
			FieldCourseThumbnail:   {"course_thumbnail", "thumbnail", "thumbnail_url"},
			FieldCourseLevel:       {"course_level", "level"},
			FieldCourseCategory:    {"course_category", "category"},
			FieldModuleID:          {"module_id"},
			FieldModuleTitle:       {"module_title", "module", "section", "section_title"},
			FieldModuleOrder:       {"module_order", "section_order"},
			FieldLessonID:          {"lesson_id"},
			FieldLessonTitle:       {"lesson_title", "lesson", "lesson_name"},
			FieldLessonOrder:       {"lesson_order"},
			FieldLessonContent:     {"lesson_content", "content", "notes"},
			FieldLessonVideo:       {"lesson_video", "video_url", "video"},
			FieldLessonDuration:    {"lesson_duration", "duration", "duration_minutes"},
		},
		Required: []Field{FieldCourseTitle, FieldModuleTitle, FieldLessonTitle},
	}
}

// Tutor LMS multi-file export: three separate CSVs whose rows are joined
// through a Parent post-id column. Headers come straight out of WordPress,
// hence the post_* names and the loose delimiters.
func LegacyCourseSchema() Schema {
	return Schema{
		Name: "legacy-courses",
		Aliases: map[Field][]string{
			FieldCourseID:          {"id", "post_id", "course_id"},
			FieldCourseTitle:       {"post_title", "title", "course_title"},
			FieldCourseSlug:        {"post_name", "slug", "course_slug"},
			FieldCourseDescription: {"post_content", "description", "excerpt"},
			FieldCourseThumbnail:   {"thumbnail", "thumbnail_url", "featured_image"},
			FieldCourseLevel:       {"course_level", "level", "difficulty_level"},
			FieldCourseCategory:    {"course_category", "category"},
		},
		Required:       []Field{FieldCourseID, FieldCourseTitle},
		SniffDelimiter: true,
	}
}

func LegacyTopicSchema() Schema {
	return Schema{
		Name: "legacy-topics",
		Aliases: map[Field][]string{
			FieldModuleID:    {"id", "post_id", "topic_id"},
			FieldModuleTitle: {"post_title", "title", "topic_title"},
			FieldModuleOrder: {"menu_order", "order", "topic_order"},
			FieldParentID:    {"parent", "post_parent", "course_id"},
		},
		Required:       []Field{FieldModuleID, FieldModuleTitle, FieldParentID},
		SniffDelimiter: true,
	}
}

func LegacyLessonSchema() Schema {
	return Schema{
		Name: "legacy-lessons",
		Aliases: map[Field][]string{
			FieldLessonID:       {"id", "post_id", "lesson_id"},
			FieldLessonTitle:    {"post_title", "title", "lesson_title"},
			FieldLessonOrder:    {"menu_order", "order", "lesson_order"},
			FieldLessonContent:  {"post_content", "content"},
			FieldLessonVideo:    {"video", "video_url", "video_source"},
			FieldLessonDuration: {"duration", "video_duration"},
			FieldParentID:       {"parent", "post_parent", "topic_id"},
		},
		Required:       []Field{FieldLessonID, FieldLessonTitle, FieldParentID},
		SniffDelimiter: true,
	}
}

// Tutor LMS single-file export: a pre-joined flat dump with Spanish column
// prefixes (curso_/modulo_/leccion_) and the raw serialized video blob.
func LegacyFlatSchema() Schema {
	return Schema{
		Name: "legacy-flat",
		Aliases: map[Field][]string{
			FieldCourseID:          {"curso_id"},
			FieldCourseTitle:       {"curso_titulo", "curso_nombre", "curso"},
			FieldCourseSlug:        {"curso_slug"},
			FieldCourseDescription: {"curso_descripcion"},
			FieldCourseThumbnail:   {"curso_imagen", "curso_thumbnail"},
			FieldCourseLevel:       {"curso_nivel"},
			FieldCourseCategory:    {"curso_categoria"},
			FieldModuleID:          {"modulo_id"},
			FieldModuleTitle:       {"modulo_titulo", "modulo_nombre", "modulo"},
			FieldModuleOrder:       {"modulo_orden"},
			FieldLessonID:          {"leccion_id"},
			FieldLessonTitle:       {"leccion_titulo", "leccion_nombre", "leccion"},
			FieldLessonOrder:       {"leccion_orden"},
			FieldLessonContent:     {"leccion_contenido", "leccion_notas"},
			FieldLessonVideo:       {"video_url", "leccion_video"},
			FieldLessonDuration:    {"leccion_duracion", "duracion"},
		},
		Required:       []Field{FieldCourseTitle, FieldModuleTitle, FieldLessonTitle},
		SniffDelimiter: true,
	}
}
