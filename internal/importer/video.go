package importer

import (
	"regexp"
	"strings"
)

// Legacy Tutor LMS stores the lesson video as a PHP-serialized object. We
// never deserialize it; the labeled sub-fields are pulled out by pattern,
// tried in priority order, and returned verbatim.
var serializedSources = []*regexp.Regexp{
	regexp.MustCompile(`source_youtube";s:\d+:"([^"]+)"`),
	regexp.MustCompile(`source_vimeo";s:\d+:"([^"]+)"`),
	regexp.MustCompile(`source_external_url";s:\d+:"([^"]+)"`),
}

var youtubeID = regexp.MustCompile(`(?:youtube\.com/watch\?(?:[^"&\s]*&)*v=|youtu\.be/|youtube\.com/embed/)([A-Za-z0-9_-]{11})`)

// ExtractVideoURL turns a raw video reference into a canonical playable URL.
// It reports false when no usable reference is found; the lesson is then
// stored without a video. Pure function, called once per lesson row.
func ExtractVideoURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	for _, pattern := range serializedSources {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			return m[1], true
		}
	}

	if m := youtubeID.FindStringSubmatch(raw); m != nil {
		return "https://www.youtube.com/watch?v=" + m[1], true
	}

	if strings.HasPrefix(raw, "http") {
		return raw, true
	}
	return "", false
}
