package articlepipeline

import (
	"context"
	"fmt"
)

// imageStage (9) requests a hero image from the configured ImageBackend.
// Advisory: articles publish without a hero image rather than fail the job.
type imageStage struct {
	baseStage
	backend ImageBackend
}

func newImageStage(backend ImageBackend) Stage {
	return &imageStage{baseStage: baseStage{id: StageImage, name: "Image", critical: false}, backend: backend}
}

func (s *imageStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	if s.backend == nil {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "no image backend configured"}
	}

	prompt := fmt.Sprintf("Editorial hero image for an article about %q, professional, no text overlay.", ec.Config.Keyword)
	url, alt, err := s.backend.Generate(ctx, prompt)
	if err != nil {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "image generation failed", Cause: err}
	}
	if url == "" {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "image backend returned empty url"}
	}

	ec.Parallel.Image = &ArticleImage{URL: url, AltText: alt}
	return nil
}
