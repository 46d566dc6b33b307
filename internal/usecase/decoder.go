package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"mpasi-planner/internal/domain/entity"
)

// Decoder turns raw backend output into a validated MenuPlan. Decoding is
// staged: extract the JSON payload from surrounding prose, parse it into a
// generic tree, then validate field by field. Only a missing payload,
// broken syntax, or a missing meal slot rejects the plan; individual bad
// fields are defaulted and recorded as warnings so normal variance in
// model output degrades the plan instead of discarding it.
type Decoder struct{}

func NewDecoder() *Decoder { return &Decoder{} }

// "Beras putih (AR001, 50g)" -> name, code, amount
var ingredientPattern = regexp.MustCompile(`^(.*?)\s*\(\s*([^,()]+?)\s*,\s*([^()]+?)\s*\)$`)

// Decode parses raw model text. Idempotent: the same input always yields
// the same plan. On rejection the returned error is a *entity.DecodeError
// retaining the raw text.
func (d *Decoder) Decode(raw string) (*entity.MenuPlan, error) {
	payload, err := extractPayload(raw)
	if err != nil {
		return nil, &entity.DecodeError{Stage: entity.StageExtract, Raw: raw, Err: err}
	}

	var tree map[string]any
	if err := json.Unmarshal([]byte(payload), &tree); err != nil {
		return nil, &entity.DecodeError{Stage: entity.StageParse, Raw: raw, Err: err}
	}

	var missing []string
	slots := make(map[string]map[string]any, len(entity.MealSlots))
	for _, slot := range entity.MealSlots {
		m, ok := tree[slot].(map[string]any)
		if !ok {
			missing = append(missing, slot)
			continue
		}
		slots[slot] = m
	}
	if len(missing) > 0 {
		return nil, &entity.DecodeError{
			Stage: entity.StageSlots,
			Raw:   raw,
			Err:   fmt.Errorf("meal slots missing or malformed: %s", strings.Join(missing, ", ")),
		}
	}

	plan := &entity.MenuPlan{}
	plan.Breakfast = decodeMeal("breakfast", slots["breakfast"], &plan.Warnings)
	plan.MorningSnack = decodeMeal("morning_snack", slots["morning_snack"], &plan.Warnings)
	plan.Lunch = decodeMeal("lunch", slots["lunch"], &plan.Warnings)
	plan.AfternoonSnack = decodeMeal("afternoon_snack", slots["afternoon_snack"], &plan.Warnings)
	plan.Dinner = decodeMeal("dinner", slots["dinner"], &plan.Warnings)
	plan.Summary = decodeSummary(tree, plan)
	plan.Recommendation, _ = asString(tree["recommendation"])

	return plan, nil
}

// extractPayload locates the structured block: markdown fences first, then
// the outermost object in free-form prose.
func extractPayload(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", errors.New("empty response")
	}

	// Prefer a fenced block, but only one that actually carries an object;
	// models sometimes fence unrelated snippets inside trailing commentary.
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		if fenced := strings.TrimSpace(rest); strings.Contains(fenced, "{") {
			text = fenced
		}
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return "", errors.New("no JSON object found in response")
	}
	obj, ok := balancedObject(text[start:])
	if !ok {
		return "", errors.New("unterminated JSON object in response")
	}
	return obj, nil
}

// balancedObject returns the object opening at text[0] up to its matching
// closing brace. Braces inside string literals do not count, so trailing
// prose with a stray '}' cannot extend the payload.
func balancedObject(text string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[:i+1], true
			}
		}
	}
	return "", false
}

func decodeMeal(slot string, m map[string]any, warnings *[]string) entity.Meal {
	meal := entity.Meal{
		MenuName:     stringField(slot, "menu_name", m, warnings),
		Time:         stringField(slot, "time", m, warnings),
		Portion:      stringField(slot, "portion", m, warnings),
		Ingredients:  decodeIngredients(slot, m["ingredients"], warnings),
		Instructions: decodeInstructions(m["instructions"]),
	}

	nut, ok := m["nutrition"].(map[string]any)
	if !ok {
		note(warnings, "%s.nutrition missing, all totals defaulted to 0", slot)
		return meal
	}
	meal.Nutrition = entity.Nutrition{
		EnergyKcal: numberField(slot+".nutrition", "energy_kcal", nut, warnings),
		ProteinG:   numberField(slot+".nutrition", "protein_g", nut, warnings),
		CarbsG:     numberField(slot+".nutrition", "carbs_g", nut, warnings),
		FatG:       numberField(slot+".nutrition", "fat_g", nut, warnings),
	}
	return meal
}

func decodeIngredients(slot string, v any, warnings *[]string) []entity.Ingredient {
	items, ok := v.([]any)
	if !ok {
		if v != nil {
			note(warnings, "%s.ingredients has wrong shape, defaulted to empty list", slot)
		} else {
			note(warnings, "%s.ingredients missing, defaulted to empty list", slot)
		}
		return []entity.Ingredient{}
	}

	out := make([]entity.Ingredient, 0, len(items))
	for _, item := range items {
		var ing entity.Ingredient
		switch t := item.(type) {
		case string:
			// "Name (CODE, amount)" as instructed; bare names still pass.
			if parts := ingredientPattern.FindStringSubmatch(strings.TrimSpace(t)); parts != nil {
				ing = entity.Ingredient{Name: parts[1], Code: parts[2], Amount: parts[3]}
			} else {
				ing = entity.Ingredient{Name: strings.TrimSpace(t)}
			}
		case map[string]any:
			// Object form some local models emit: {"nama","kode_tkpi","jumlah"}.
			ing.Name, _ = asString(firstOf(t, "nama", "name"))
			ing.Code, _ = asString(firstOf(t, "kode_tkpi", "code"))
			ing.Amount, _ = asString(firstOf(t, "jumlah", "amount"))
		default:
			continue
		}
		if ing.Name == "" {
			continue
		}
		ing.Display = formatIngredient(ing)
		out = append(out, ing)
	}
	return out
}

func decodeInstructions(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(t))
		for _, step := range t {
			if s, ok := asString(step); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func decodeSummary(tree map[string]any, plan *entity.MenuPlan) entity.DailySummary {
	summary := entity.DailySummary{}

	m, ok := tree["daily_summary"].(map[string]any)
	if !ok {
		for _, meal := range plan.Meals() {
			summary.Totals.Add(meal.Nutrition)
		}
		note(&plan.Warnings, "daily_summary missing, totals computed from the five meals")
		return summary
	}

	summary.Totals = entity.Nutrition{
		EnergyKcal: numberField("daily_summary", "total_energy_kcal", m, &plan.Warnings),
		ProteinG:   numberField("daily_summary", "total_protein_g", m, &plan.Warnings),
		CarbsG:     numberField("daily_summary", "total_carbs_g", m, &plan.Warnings),
		FatG:       numberField("daily_summary", "total_fat_g", m, &plan.Warnings),
	}
	summary.AKGCompliance, _ = asString(m["akg_compliance"])
	return summary
}

// formatIngredient derives the display form without touching the parsed
// fields.
func formatIngredient(ing entity.Ingredient) string {
	switch {
	case ing.Code != "" && ing.Amount != "":
		return fmt.Sprintf("%s (%s, %s)", ing.Name, ing.Code, ing.Amount)
	case ing.Amount != "":
		return fmt.Sprintf("%s (%s)", ing.Name, ing.Amount)
	default:
		return ing.Name
	}
}

func stringField(scope, key string, m map[string]any, warnings *[]string) string {
	v, present := m[key]
	if !present {
		note(warnings, "%s.%s missing, defaulted to empty", scope, key)
		return ""
	}
	s, ok := asString(v)
	if !ok {
		note(warnings, "%s.%s has wrong shape, defaulted to empty", scope, key)
		return ""
	}
	return s
}

func numberField(scope, key string, m map[string]any, warnings *[]string) float64 {
	v, present := m[key]
	if !present {
		note(warnings, "%s.%s missing, defaulted to 0", scope, key)
		return 0
	}
	n, ok := asNumber(v)
	if !ok {
		note(warnings, "%s.%s is not numeric, defaulted to 0", scope, key)
		return 0
	}
	if n < 0 {
		note(warnings, "%s.%s is negative, defaulted to 0", scope, key)
		return 0
	}
	return n
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return strings.TrimSpace(s), ok
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func note(warnings *[]string, format string, args ...any) {
	*warnings = append(*warnings, fmt.Sprintf(format, args...))
}
