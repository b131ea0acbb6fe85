package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// maxProfileChars bounds the concatenated skill text per domain so that
// embedding cost stays fixed regardless of dataset size.
const maxProfileChars = 500

const (
	colSkills = "current_skills"
	colField  = "interested_future_field"
)

// DomainProfile is one reference record: a career field and a snippet of
// the skill text reported by everyone heading toward that field.
type DomainProfile struct {
	Domain string
	Skills string
}

// Dataset holds the reference domain profiles, built once at load time and
// read-only afterwards. Profiles preserves first-appearance order of the
// domains in the source file; that order is the affinity tie-break order.
type Dataset struct {
	Profiles []DomainProfile
}

// Load reads the reference CSV. Column names are lowercased and trimmed;
// missing values become empty strings; skill and field text is lowercased.
// The file must carry at least the current_skills and
// interested_future_field columns.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses dataset rows from r. Split out from Load so tests can feed
// CSV text directly.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}

	skillsIdx, fieldIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case colSkills:
			skillsIdx = i
		case colField:
			fieldIdx = i
		}
	}
	if skillsIdx < 0 || fieldIdx < 0 {
		return nil, fmt.Errorf("dataset missing required columns %q and %q", colSkills, colField)
	}

	// Accumulate skill text per domain, keeping first-appearance order.
	byDomain := make(map[string]*strings.Builder)
	var order []string

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset row: %w", err)
		}

		domain := strings.ToLower(strings.TrimSpace(cell(row, fieldIdx)))
		if domain == "" {
			continue
		}
		skills := strings.ToLower(strings.TrimSpace(cell(row, skillsIdx)))

		b, ok := byDomain[domain]
		if !ok {
			b = &strings.Builder{}
			byDomain[domain] = b
			order = append(order, domain)
		}
		if skills != "" {
			if b.Len() > 0 {
				b.WriteString(",")
			}
			b.WriteString(skills)
		}
	}

	ds := &Dataset{Profiles: make([]DomainProfile, 0, len(order))}
	for _, domain := range order {
		text := truncate(byDomain[domain].String(), maxProfileChars)
		ds.Profiles = append(ds.Profiles, DomainProfile{Domain: domain, Skills: text})
	}

	if len(ds.Profiles) == 0 {
		return nil, fmt.Errorf("dataset contains no usable rows")
	}
	return ds, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
