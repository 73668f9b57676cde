package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Rahulvijayan123/workout-engine/internal/domain/deload"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/exercise"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/insession"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/load"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/progression"
	"github.com/Rahulvijayan123/workout-engine/internal/domain/scheduler"
)

// Decode errors.
var (
	ErrInvalidTemplates = errors.New("invalid templates encoding")
)

// TrainingPlan is the caller-owned plan the engine prescribes from.
// Progression and in-session policies are keyed by the ORIGINAL template
// exercise id, so a substitute performed in an original's slot inherits the
// original's intent.
type TrainingPlan struct {
	// ID is the plan identifier.
	ID string `json:"id"`
	// Name is the human-readable plan name.
	Name string `json:"name"`
	// Templates maps template id to template.
	Templates map[string]WorkoutTemplate `json:"templates"`
	// Schedule assigns templates to dates.
	Schedule scheduler.Schedule `json:"schedule"`
	// ProgressionPolicies maps original exercise id to its progression.
	// A nil entry records a legacy RIR-as-progression value that resolution
	// coerces to the in-session role.
	ProgressionPolicies map[string]progression.Policy `json:"-"`
	// InSessionPolicies maps original exercise id to an explicit in-session
	// policy override. Missing entries default from the prescription.
	InSessionPolicies map[string]insession.Policy `json:"-"`
	// SubstitutionPool holds the candidate exercises substitutions rank.
	SubstitutionPool []exercise.Exercise `json:"substitutionPool,omitempty"`
	// DeloadConfig enables deload evaluation when present.
	DeloadConfig *deload.Config `json:"deloadConfig,omitempty"`
	// RoundingPolicy rounds every emitted working load.
	RoundingPolicy load.RoundingPolicy `json:"roundingPolicy"`
	// StartDate anchors scheduled-deload week counting, when known.
	StartDate *time.Time `json:"startDate,omitempty"`
}

// Validate validates the plan's templates and configuration.
func (p TrainingPlan) Validate() error {
	for id, tpl := range p.Templates {
		if id != tpl.ID {
			return fmt.Errorf("%w: key %q does not match template id %q", ErrInvalidTemplates, id, tpl.ID)
		}
		if err := tpl.Validate(); err != nil {
			return err
		}
	}
	if err := p.Schedule.Validate(); err != nil {
		return err
	}
	if err := p.RoundingPolicy.Validate(); err != nil {
		return err
	}
	if p.DeloadConfig != nil {
		if err := p.DeloadConfig.Validate(); err != nil {
			return err
		}
	}
	for _, ex := range p.SubstitutionPool {
		if err := ex.Validate(); err != nil {
			return fmt.Errorf("substitution pool: %w", err)
		}
	}
	return nil
}

// Template returns the template for an id, if present.
func (p TrainingPlan) Template(id string) (WorkoutTemplate, bool) {
	tpl, ok := p.Templates[id]
	return tpl, ok
}

// ExerciseIndex builds the id -> Exercise lookup across every template and
// the substitution pool. Built once per planner call.
func (p TrainingPlan) ExerciseIndex() map[string]exercise.Exercise {
	index := make(map[string]exercise.Exercise)
	ids := make([]string, 0, len(p.Templates))
	for id := range p.Templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, te := range p.Templates[id].Exercises {
			index[te.Exercise.ID] = te.Exercise
		}
	}
	for _, ex := range p.SubstitutionPool {
		index[ex.ID] = ex
	}
	return index
}

// HasLegacyRIRProgression reports whether the exercise's stored progression
// was the legacy RIR-as-progression value.
func (p TrainingPlan) HasLegacyRIRProgression(exerciseID string) bool {
	policy, present := p.ProgressionPolicies[exerciseID]
	return present && policy == nil
}

// planJSON mirrors TrainingPlan for codec purposes, with the polymorphic
// fields held raw.
type planJSON struct {
	ID                  string                     `json:"id"`
	Name                string                     `json:"name"`
	Templates           json.RawMessage            `json:"templates"`
	Schedule            scheduler.Schedule         `json:"schedule"`
	ProgressionPolicies map[string]json.RawMessage `json:"progressionPolicies,omitempty"`
	InSessionPolicies   map[string]json.RawMessage `json:"inSessionPolicies,omitempty"`
	SubstitutionPool    []exercise.Exercise        `json:"substitutionPool,omitempty"`
	DeloadConfig        *deload.Config             `json:"deloadConfig,omitempty"`
	RoundingPolicy      load.RoundingPolicy        `json:"roundingPolicy"`
	StartDate           *time.Time                 `json:"startDate,omitempty"`
}

// UnmarshalJSON decodes a plan, accepting both the map encoding and the
// legacy pair-array encoding for templates, tolerating missing
// inSessionPolicies, and coercing legacy RIR progressions to nil entries.
func (p *TrainingPlan) UnmarshalJSON(data []byte) error {
	var raw planJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse training plan: %w", err)
	}

	templates, err := decodeTemplates(raw.Templates)
	if err != nil {
		return err
	}

	progressions := make(map[string]progression.Policy, len(raw.ProgressionPolicies))
	for id, rawPolicy := range raw.ProgressionPolicies {
		policy, err := progression.UnmarshalPolicy(rawPolicy)
		if err != nil {
			return fmt.Errorf("progression policy for %s: %w", id, err)
		}
		progressions[id] = policy
	}

	inSession := make(map[string]insession.Policy, len(raw.InSessionPolicies))
	for id, rawPolicy := range raw.InSessionPolicies {
		policy, err := insession.UnmarshalPolicy(rawPolicy)
		if err != nil {
			return fmt.Errorf("in-session policy for %s: %w", id, err)
		}
		inSession[id] = policy
	}

	*p = TrainingPlan{
		ID:                  raw.ID,
		Name:                raw.Name,
		Templates:           templates,
		Schedule:            raw.Schedule,
		ProgressionPolicies: progressions,
		InSessionPolicies:   inSession,
		SubstitutionPool:    raw.SubstitutionPool,
		DeloadConfig:        raw.DeloadConfig,
		RoundingPolicy:      raw.RoundingPolicy,
		StartDate:           raw.StartDate,
	}
	return nil
}

// MarshalJSON encodes the plan with templates as a map and policies through
// their discriminated-union marshalers.
func (p TrainingPlan) MarshalJSON() ([]byte, error) {
	templates, err := json.Marshal(p.Templates)
	if err != nil {
		return nil, err
	}

	progressions := make(map[string]json.RawMessage, len(p.ProgressionPolicies))
	for id, policy := range p.ProgressionPolicies {
		if policy == nil {
			progressions[id] = json.RawMessage(`{"type":"RIR_AUTOREGULATION"}`)
			continue
		}
		data, err := json.Marshal(policy)
		if err != nil {
			return nil, err
		}
		progressions[id] = data
	}

	inSession := make(map[string]json.RawMessage, len(p.InSessionPolicies))
	for id, policy := range p.InSessionPolicies {
		data, err := json.Marshal(policy)
		if err != nil {
			return nil, err
		}
		inSession[id] = data
	}

	return json.Marshal(planJSON{
		ID:                  p.ID,
		Name:                p.Name,
		Templates:           templates,
		Schedule:            p.Schedule,
		ProgressionPolicies: progressions,
		InSessionPolicies:   inSession,
		SubstitutionPool:    p.SubstitutionPool,
		DeloadConfig:        p.DeloadConfig,
		RoundingPolicy:      p.RoundingPolicy,
		StartDate:           p.StartDate,
	})
}

// decodeTemplates accepts the map encoding {"id": template, ...} and the
// legacy flat pair-array encoding ["id", template, "id", template, ...].
func decodeTemplates(data json.RawMessage) (map[string]WorkoutTemplate, error) {
	if len(data) == 0 || string(data) == "null" {
		return map[string]WorkoutTemplate{}, nil
	}

	var asMap map[string]WorkoutTemplate
	if err := json.Unmarshal(data, &asMap); err == nil {
		return asMap, nil
	}

	var asArray []json.RawMessage
	if err := json.Unmarshal(data, &asArray); err != nil {
		return nil, fmt.Errorf("%w: neither map nor pair array", ErrInvalidTemplates)
	}
	if len(asArray)%2 != 0 {
		return nil, fmt.Errorf("%w: pair array has odd length %d", ErrInvalidTemplates, len(asArray))
	}

	templates := make(map[string]WorkoutTemplate, len(asArray)/2)
	for i := 0; i < len(asArray); i += 2 {
		var id string
		if err := json.Unmarshal(asArray[i], &id); err != nil {
			return nil, fmt.Errorf("%w: pair key at %d: %v", ErrInvalidTemplates, i, err)
		}
		var tpl WorkoutTemplate
		if err := json.Unmarshal(asArray[i+1], &tpl); err != nil {
			return nil, fmt.Errorf("%w: pair value for %s: %v", ErrInvalidTemplates, id, err)
		}
		templates[id] = tpl
	}
	return templates, nil
}
