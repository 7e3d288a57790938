package articlepipeline

import "sort"

// requiredStageIDs is the fixed set of stages a registry must cover. Unlike
// the teacher's orchestrator, which validates an arbitrary caller-supplied
// DAG, this pipeline's shape is fixed by spec: the factory's job is to
// confirm every required id is present exactly once and that no unknown id
// slipped in, not to infer an order from declared dependencies.
var requiredStageIDs = []StageID{
	StageDataFetch, StagePromptBuild, StageGenerate, StageExtract, StageRefine,
	StageCitations, StageInternalLinks, StageToC, StageMetadata, StageFAQ, StageImage,
	StageMergeAndLink, StagePersist, StageSimilarity,
}

// criticalStageIDs mirrors spec.md §4.1's "critical" column; the factory
// rejects a registry where one of these is missing or registered with
// Critical() == false, since the engine's failure taxonomy depends on it.
var criticalStageIDs = map[StageID]bool{
	StageDataFetch:    true,
	StageGenerate:     true,
	StageMergeAndLink: true,
	StagePersist:      true,
}

// fanOutStageIDs is the set dispatched concurrently in stages 4..9.
var fanOutStageIDs = map[StageID]bool{
	StageCitations:     true,
	StageInternalLinks: true,
	StageToC:           true,
	StageMetadata:      true,
	StageFAQ:           true,
	StageImage:         true,
}

// StageRegistry is a validated, immutable map from StageID to its Stage
// implementation, built once at startup and shared across every job.
type StageRegistry struct {
	stages map[StageID]Stage
}

// StageFactory constructs a StageRegistry from a set of stage builders. It
// is the single place a deployment configures which Stage implementation
// backs each id — analogous to the teacher's DAGEngine accepting a
// caller-provided []Stage, but validated against this pipeline's fixed
// shape rather than an arbitrary dependency graph (see requiredStageIDs).
type StageFactory struct {
	collaborators Collaborators
}

// NewStageFactory returns a factory wired to the given collaborator set.
func NewStageFactory(collaborators Collaborators) *StageFactory {
	return &StageFactory{collaborators: collaborators}
}

// Build constructs the full registry of concrete stage implementations.
// Returns a *ConfigError only if the stage set fails registry validation.
// Collaborators are not checked here: a stage whose collaborator is nil
// fails or skips that part of its work when it runs.
func (f *StageFactory) Build() (*StageRegistry, error) {
	stages := []Stage{
		newDataFetchStage(f.collaborators.LinkProvider),
		newPromptBuildStage(),
		newGenerateStage(f.collaborators.LLM),
		newExtractStage(),
		newRefineStage(f.collaborators.LLM),
		newCitationsStage(f.collaborators.URLValidator),
		newInternalLinksStage(f.collaborators.LinkProvider),
		newTocStage(),
		newMetadataStage(),
		newFAQStage(f.collaborators.LLM),
		newImageStage(f.collaborators.ImageBackend),
		newMergeStage(),
		newPersistStage(f.collaborators.Storage, f.collaborators.Renderer),
		newSimilarityStage(f.collaborators.Embeddings, f.collaborators.Similarity, f.collaborators.Storage),
	}
	return newStageRegistry(stages)
}

func newStageRegistry(stages []Stage) (*StageRegistry, error) {
	seen := make(map[StageID]Stage, len(stages))
	for _, s := range stages {
		if _, dup := seen[s.ID()]; dup {
			return nil, &ConfigError{Message: "duplicate stage id " + s.ID().String()}
		}
		seen[s.ID()] = s
	}
	for _, id := range requiredStageIDs {
		s, ok := seen[id]
		if !ok {
			return nil, &ConfigError{Message: "missing required stage " + id.String()}
		}
		if criticalStageIDs[id] && !s.Critical() {
			return nil, &ConfigError{Message: "stage " + id.String() + " must be registered as critical"}
		}
		if !criticalStageIDs[id] && s.Critical() {
			return nil, &ConfigError{Message: "stage " + id.String() + " must not be registered as critical"}
		}
	}
	for id := range seen {
		found := false
		for _, req := range requiredStageIDs {
			if req == id {
				found = true
				break
			}
		}
		if !found {
			return nil, &ConfigError{Message: "unknown stage id " + id.String() + " registered"}
		}
	}
	return &StageRegistry{stages: seen}, nil
}

// Get returns the Stage registered for id, and whether it was found.
func (r *StageRegistry) Get(id StageID) (Stage, bool) {
	s, ok := r.stages[id]
	return s, ok
}

// FanOutStages returns the stages 4..9 in a stable, deterministic order
// (ascending id) — order only matters for log/progress readability, since
// the engine dispatches them concurrently.
func (r *StageRegistry) FanOutStages() []Stage {
	var ids []StageID
	for id := range fanOutStageIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]Stage, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.stages[id])
	}
	return out
}
