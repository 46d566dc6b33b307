package usecase

import (
	"fmt"
	"log"
	"strings"

	"mpasi-planner/internal/domain/entity"
)

// Section markers. The decoder-side tests and the grounding instruction
// both depend on these exact strings appearing exactly once each.
const (
	RulesStart       = "RULES SECTION START"
	RulesEnd         = "RULES SECTION END"
	IngredientsStart = "INGREDIENTS SECTION START"
	IngredientsEnd   = "INGREDIENTS SECTION END"
)

const emptySectionNote = "(no documents retrieved)"

// menuSchemaExample is the structure the model must copy. String-form
// ingredients carry the TKPI code and amount in parentheses.
const menuSchemaExample = `{
  "breakfast": {
    "time": "06:00-07:00",
    "menu_name": "an original menu name, not a template",
    "ingredients": [
      "Beras putih (AR001, 50g)",
      "Ayam dada (AY001, 30g)"
    ],
    "portion": "150 ml / 120g",
    "instructions": [
      "step one",
      "step two"
    ],
    "nutrition": {
      "energy_kcal": 145,
      "protein_g": 6.2,
      "carbs_g": 20.5,
      "fat_g": 2.8
    }
  },
  "morning_snack": { "same shape as breakfast": "..." },
  "lunch": { "same shape as breakfast": "..." },
  "afternoon_snack": { "same shape as breakfast": "..." },
  "dinner": { "same shape as breakfast": "..." },
  "daily_summary": {
    "total_energy_kcal": 470,
    "total_protein_g": 21.0,
    "total_carbs_g": 71.7,
    "total_fat_g": 8.0,
    "akg_compliance": "how the day compares to the AKG targets from the rules section"
  },
  "recommendation": "one short general recommendation"
}`

// Assembler renders the request and the two context bundles into a single
// grounded prompt. Keeping rules and ingredients in non-overlapping,
// explicitly bounded sections with "use only" language is what anchors the
// generation to retrieved facts instead of the model's latent knowledge.
type Assembler struct{}

func NewAssembler() *Assembler { return &Assembler{} }

// Assemble is a pure function of its inputs. The two bundles must carry
// their proper labels; an empty bundle renders as an annotated empty
// section rather than being dropped.
func (a *Assembler) Assemble(req entity.PlanRequest, rules, ingredients entity.ContextBundle) entity.Prompt {
	var b strings.Builder

	b.WriteString("You are a meticulous MPASI (infant complementary feeding) menu planner.\n\n")

	b.WriteString("CHILD INFORMATION:\n")
	fmt.Fprintf(&b, "age_months: %d\n", req.AgeMonths)
	fmt.Fprintf(&b, "weight_kg: %g\n", req.WeightKg)
	fmt.Fprintf(&b, "height_cm: %g\n", req.HeightCm)
	if req.Residence != "" {
		fmt.Fprintf(&b, "residence: %s\n", req.Residence)
	}
	if len(req.Allergies) > 0 {
		fmt.Fprintf(&b, "allergies: %s\n", strings.Join(req.Allergies, ", "))
	} else {
		b.WriteString("allergies: none reported\n")
	}
	b.WriteString("\n")

	writeSection(&b, RulesStart, RulesEnd, rules)
	writeSection(&b, IngredientsStart, IngredientsEnd, ingredients)

	b.WriteString("TASK: design one original full-day MPASI menu plan.\n\n")
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("1. Derive the nutrient targets (AKG), texture, portion and frequency guidance SOLELY from the rules section above.\n")
	b.WriteString("2. Choose ingredients SOLELY from the ingredients section above. Include the TKPI code and the amount in grams or ml for every ingredient, as a string: \"Name (CODE, amount)\".\n")
	if len(req.Allergies) > 0 {
		fmt.Fprintf(&b, "3. The child is allergic to: %s. Never use an ingredient matching any of these terms.\n", strings.Join(req.Allergies, ", "))
	} else {
		b.WriteString("3. No allergies were reported.\n")
	}
	b.WriteString("4. Compute every nutrition number yourself from the ingredients section; numbers only, no formulas, no placeholder values.\n")
	b.WriteString("5. Respond with VALID JSON ONLY, copying this structure exactly (no markdown, no commentary):\n")
	b.WriteString(menuSchemaExample)
	b.WriteString("\n\nDo not use the two sections above for anything except what instructions 1 and 2 allow, and do not use any other source.\n")

	prompt := entity.Prompt{Text: b.String()}
	log.Printf("[PROMPT] assembled %d chars (rules=%d docs, ingredients=%d docs)",
		prompt.Chars(), len(rules.Documents), len(ingredients.Documents))
	return prompt
}

func writeSection(b *strings.Builder, start, end string, bundle entity.ContextBundle) {
	b.WriteString(start + "\n")
	if bundle.Empty() {
		b.WriteString(emptySectionNote + "\n")
	} else {
		for i, doc := range bundle.Documents {
			if i > 0 {
				b.WriteString("\n---\n")
			}
			b.WriteString(doc.Content)
			b.WriteString("\n")
		}
	}
	b.WriteString(end + "\n\n")
}
