package entity

import (
	"fmt"
	"strings"
)

// Backend identifies a generation backend. The set is closed; selection
// happens via this field on the request, never by runtime type inspection.
type Backend string

const (
	BackendGemini   Backend = "gemini"
	BackendLMStudio Backend = "lmstudio"
)

// MPASI is only recommended for this age band.
const (
	MinAgeMonths = 6
	MaxAgeMonths = 24
)

// PlanRequest describes the child a daily menu is generated for.
type PlanRequest struct {
	AgeMonths int      `json:"age_months"`
	WeightKg  float64  `json:"weight_kg"`
	HeightCm  float64  `json:"height_cm"`
	Residence string   `json:"residence,omitempty"`
	Allergies []string `json:"allergies,omitempty"`

	Backend Backend `json:"backend,omitempty"`
	Model   string  `json:"model,omitempty"`
}

// Normalize validates the request in place and canonicalizes the allergy
// list (lower-cased, trimmed, deduplicated, original order preserved).
func (r *PlanRequest) Normalize() error {
	if r.AgeMonths < MinAgeMonths || r.AgeMonths > MaxAgeMonths {
		return fmt.Errorf("%w: MPASI menus cover ages %d-%d months, got %d",
			ErrInvalidRequest, MinAgeMonths, MaxAgeMonths, r.AgeMonths)
	}
	if r.WeightKg <= 0 {
		return fmt.Errorf("%w: weight must be positive, got %v kg", ErrInvalidRequest, r.WeightKg)
	}
	if r.HeightCm <= 0 {
		return fmt.Errorf("%w: height must be positive, got %v cm", ErrInvalidRequest, r.HeightCm)
	}

	if r.Backend == "" {
		r.Backend = BackendGemini
	}
	switch r.Backend {
	case BackendGemini, BackendLMStudio:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, r.Backend)
	}

	seen := make(map[string]struct{}, len(r.Allergies))
	deduped := r.Allergies[:0]
	for _, a := range r.Allergies {
		term := strings.ToLower(strings.TrimSpace(a))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		deduped = append(deduped, term)
	}
	r.Allergies = deduped

	return nil
}
