package entity

// Bundle labels. Rules chunks (feeding norms, AKG nutrient targets) and
// ingredient chunks (TKPI food composition lines) are indexed under these
// categories and retrieved through separate queries.
const (
	BundleRules       = "rules"
	BundleIngredients = "ingredients"
)

// Document is one embedded text chunk from the nutrition dataset.
// Immutable once indexed; owned by the vector store.
type Document struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Source   string `json:"source,omitempty"`
}

// ContextBundle is the ordered result of one retrieval step, together with
// the query that produced it. The rules and ingredients bundles are never
// merged before prompt assembly.
type ContextBundle struct {
	Label     string     `json:"label"`
	Query     string     `json:"query"`
	Limit     uint64     `json:"limit"`
	Documents []Document `json:"documents"`
}

// Empty reports whether retrieval found nothing for this bundle's query.
// An empty bundle degrades grounding quality but is not an error.
func (b ContextBundle) Empty() bool { return len(b.Documents) == 0 }

// RetrievalReport records both retrieval steps for observability. It is
// returned alongside the plan and not consumed by downstream logic.
type RetrievalReport struct {
	RulesQuery       string `json:"rules_query"`
	RulesCount       int    `json:"rules_count"`
	IngredientsQuery string `json:"ingredients_query"`
	IngredientsCount int    `json:"ingredients_count"`
	PromptChars      int    `json:"prompt_chars"`
}
