package inference

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/futureproofai/futureproof/internal/skills"
)

var listSeparator = regexp.MustCompile(`[,\n]`)

// SplitSkillList parses comma/newline-separated model output into a
// title-cased skill list capped at max entries.
func SplitSkillList(raw string, max int) []string {
	return splitList(raw, max, true)
}

// SplitCertList parses comma/newline-separated model output into a
// certification list capped at max entries. Certification names keep their
// original casing: "AWS Certified Solutions Architect" must not be
// re-cased.
func SplitCertList(raw string, max int) []string {
	return splitList(raw, max, false)
}

func splitList(raw string, max int, titleCase bool) []string {
	var out []string
	for _, tok := range listSeparator.Split(raw, -1) {
		s := strings.TrimSpace(tok)
		if s == "" {
			continue
		}
		if titleCase {
			s = skills.Title(s)
		}
		out = append(out, s)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// Platform is one learning resource: a display name and its URL.
type Platform struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PlatformDirectory groups learning platforms by pricing. The zero value
// (two empty slices) is the defined degenerate result for unparseable model
// output.
type PlatformDirectory struct {
	Free []Platform `json:"free"`
	Paid []Platform `json:"paid"`
}

// EmptyPlatformDirectory returns the defined default: both groups present,
// both empty. Callers and JSON consumers see [] rather than null.
func EmptyPlatformDirectory() PlatformDirectory {
	return PlatformDirectory{Free: []Platform{}, Paid: []Platform{}}
}

// ParsePlatformDirectory decodes model output into a PlatformDirectory.
// The text may be wrapped in markdown code fences or conversational filler;
// after fence stripping and brace extraction the decode is strict, and any
// failure degrades to the empty directory, never an error.
func ParsePlatformDirectory(raw string) PlatformDirectory {
	s := ExtractJSONObject(raw)
	if s == "" {
		return EmptyPlatformDirectory()
	}

	var dir PlatformDirectory
	if err := json.Unmarshal([]byte(s), &dir); err != nil {
		return EmptyPlatformDirectory()
	}
	if dir.Free == nil {
		dir.Free = []Platform{}
	}
	if dir.Paid == nil {
		dir.Paid = []Platform{}
	}
	return dir
}

// StripFences removes a leading ```json / ``` fence and the matching
// trailing fence from model output.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		if strings.HasPrefix(s, "json") {
			s = s[4:]
		}
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	}
	return strings.TrimSpace(s)
}

// ExtractJSONObject strips fences and cuts the substring between the first
// '{' and the last '}'. Returns "" when no object is present.
func ExtractJSONObject(raw string) string {
	s := StripFences(raw)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// ExtractJSONArray strips fences and cuts the substring between the first
// '[' and the last ']'. Returns "" when no array is present.
func ExtractJSONArray(raw string) string {
	s := StripFences(raw)
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
