package articlepipeline

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// tocStage (6) builds a table of contents from the section titles Stage 3
// already parsed, slugifying each into an anchor.
type tocStage struct {
	baseStage
}

func newTocStage() Stage {
	return &tocStage{baseStage: baseStage{id: StageToC, name: "ToC", critical: false}}
}

var tocSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func (s *tocStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	if len(ec.StructuredData.Sections) == 0 {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "no sections available to build a table of contents"}
	}

	seen := make(map[string]int)
	var toc []TocEntry
	for _, sec := range ec.StructuredData.Sections {
		slug := slugify(sec.Title)
		if n := seen[slug]; n > 0 {
			seen[slug]++
			slug = slug + "-" + strconv.Itoa(n)
		} else {
			seen[slug] = 1
		}
		toc = append(toc, TocEntry{Anchor: slug, Label: sec.Title})
	}

	ec.Parallel.ToC = toc
	return nil
}

func slugify(s string) string {
	lowered := strings.ToLower(s)
	slug := tocSlugPattern.ReplaceAllString(lowered, "-")
	return strings.Trim(slug, "-")
}
