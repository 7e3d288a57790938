package articlepipeline

import "context"

// metadataStage (7) derives SEO/AEO metadata fields from the structured
// draft: meta title/description length-checked against search-engine
// conventions, plus a canonical slug.
type metadataStage struct {
	baseStage
}

func newMetadataStage() Stage {
	return &metadataStage{baseStage: baseStage{id: StageMetadata, name: "Metadata", critical: false}}
}

func (s *metadataStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	title := ec.StructuredData.MetaTitle
	if title == "" {
		title = ec.StructuredData.Headline
	}
	description := ec.StructuredData.MetaDescription
	if description == "" {
		description = ec.StructuredData.Teaser
	}

	if len(title) > 60 {
		title = title[:57] + "..."
	}
	if len(description) > 160 {
		description = description[:157] + "..."
	}

	ec.Parallel.Metadata = map[string]any{
		"meta_title":       title,
		"meta_description": description,
		"slug":              slugify(ec.StructuredData.Headline),
		"keyword":           ec.Config.Keyword,
		"language":          ec.Language,
	}
	return nil
}
