package entity

// Meal slot keys as they appear in the model's JSON reply. A plan is valid
// only when all five slots are present.
var MealSlots = []string{"breakfast", "morning_snack", "lunch", "afternoon_snack", "dinner"}

// Nutrition holds the four tracked totals for a meal or a day.
type Nutrition struct {
	EnergyKcal float64 `json:"energy_kcal"`
	ProteinG   float64 `json:"protein_g"`
	CarbsG     float64 `json:"carbs_g"`
	FatG       float64 `json:"fat_g"`
}

// Add accumulates another meal's totals.
func (n *Nutrition) Add(o Nutrition) {
	n.EnergyKcal += o.EnergyKcal
	n.ProteinG += o.ProteinG
	n.CarbsG += o.CarbsG
	n.FatG += o.FatG
}

// Ingredient is one item of a meal. Code is the TKPI food code when the
// model supplied one. Display is derived after validation and carries the
// human form, e.g. "Beras putih (AR001, 50g)".
type Ingredient struct {
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Display string `json:"display"`
}

// Meal is one of the five slots of a daily plan.
type Meal struct {
	MenuName     string       `json:"menu_name"`
	Time         string       `json:"time"`
	Portion      string       `json:"portion"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Nutrition    Nutrition    `json:"nutrition"`
}

// DailySummary aggregates the day's nutrient totals and the model's
// AKG compliance assessment.
type DailySummary struct {
	Totals        Nutrition `json:"totals"`
	AKGCompliance string    `json:"akg_compliance"`
}

// MenuPlan is the decoded daily menu. It is constructed only by the
// response decoder and is never partially valid: either all five slots
// parsed or the whole plan was rejected. Warnings lists every field that
// had to be defaulted, so systematic grounding failures stay visible.
type MenuPlan struct {
	Breakfast      Meal `json:"breakfast"`
	MorningSnack   Meal `json:"morning_snack"`
	Lunch          Meal `json:"lunch"`
	AfternoonSnack Meal `json:"afternoon_snack"`
	Dinner         Meal `json:"dinner"`

	Summary        DailySummary `json:"daily_summary"`
	Recommendation string       `json:"recommendation,omitempty"`
	Warnings       []string     `json:"warnings,omitempty"`
}

// Meals returns the five slots in serving order.
func (p *MenuPlan) Meals() []Meal {
	return []Meal{p.Breakfast, p.MorningSnack, p.Lunch, p.AfternoonSnack, p.Dinner}
}

// MenuResult is the pipeline's successful outcome.
type MenuResult struct {
	Plan    MenuPlan        `json:"plan"`
	Report  RetrievalReport `json:"retrieval"`
	Backend Backend         `json:"backend"`
	Model   string          `json:"model"`
}
