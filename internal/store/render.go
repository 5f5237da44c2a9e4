package store

import (
	"strings"
	"time"
)

// Renderer turns a release into a formatted changelog fragment. It is a pure
// transformation over the entry contents, the canonical section order and the
// header template; rendering the same release against unmodified entry files
// always yields identical output apart from the {DATE} substitution, which is
// evaluated at render time.
type Renderer struct {
	// sections is the canonical section order from configuration.
	sections []string
	// headerTemplate is the release header with {VERSION}/{DATE} placeholders.
	headerTemplate string
	// dateFormat is the Go time layout for {DATE}.
	dateFormat string
	// now is swappable in tests.
	now func() time.Time
}

// NewRenderer builds a renderer from the configured section order, release
// header template and date layout.
func NewRenderer(sections []string, headerTemplate, dateFormat string) *Renderer {
	return &Renderer{
		sections:       sections,
		headerTemplate: headerTemplate,
		dateFormat:     dateFormat,
		now:            time.Now,
	}
}

// section accumulates the body lines collected under one heading.
type section struct {
	name  string
	lines []string
}

// Render produces the changelog fragment for a release. Entry contents are
// read through the repository; a missing file fails the whole render with a
// MissingEntryFileError before any output is produced.
//
// The fragment is a "## " release header line followed by the non-empty
// sections, each named section under a "### " sub-heading, blocks separated
// by one blank line. It ends with a trailing blank line so it can be
// prepended in front of existing document content as-is.
func (r *Renderer) Render(release Release, repo *EntryRepository) (string, error) {
	sections, err := r.collect(release, repo)
	if err != nil {
		return "", err
	}

	header := strings.ReplaceAll(r.headerTemplate, "{VERSION}", release.Version)
	header = strings.ReplaceAll(header, "{DATE}", r.now().Format(r.dateFormat))

	blocks := []string{"## " + header}
	for _, s := range sections {
		if len(s.lines) == 0 {
			continue
		}
		body := strings.Join(s.lines, "\n")
		if s.name == "" {
			blocks = append(blocks, body)
		} else {
			blocks = append(blocks, "### "+s.name+"\n\n"+body)
		}
	}

	return strings.Join(blocks, "\n\n") + "\n\n", nil
}

// collect parses every entry of the release in stored order and groups body
// lines into sections, then orders them: the unlabelled section first, the
// canonical sections in configured order, leftover ad hoc sections in
// first-encountered order.
func (r *Renderer) collect(release Release, repo *EntryRepository) ([]*section, error) {
	byName := make(map[string]*section)
	var encountered []string // section names in first-seen order, "" included

	lookup := func(name string) *section {
		s, ok := byName[name]
		if !ok {
			s = &section{name: name}
			byName[name] = s
			encountered = append(encountered, name)
		}
		return s
	}

	for _, entryName := range release.Entries {
		content, err := repo.Read(entryName)
		if err != nil {
			return nil, err
		}

		// Text before the first heading belongs to the unlabelled section.
		active := lookup("")
		for _, line := range strings.Split(content, "\n") {
			if strings.HasPrefix(line, "#") {
				name := strings.TrimSpace(strings.TrimLeft(line, "#"))
				active = lookup(name)
				continue
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			active.lines = append(active.lines, line)
		}
	}

	canonical := make(map[string]bool, len(r.sections))
	for _, name := range r.sections {
		canonical[name] = true
	}

	var ordered []*section
	if s, ok := byName[""]; ok {
		ordered = append(ordered, s)
	}
	for _, name := range r.sections {
		if s, ok := byName[name]; ok {
			ordered = append(ordered, s)
		}
	}
	for _, name := range encountered {
		if name == "" || canonical[name] {
			continue
		}
		ordered = append(ordered, byName[name])
	}
	return ordered, nil
}
