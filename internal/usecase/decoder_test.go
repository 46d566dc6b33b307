package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mpasi-planner/internal/domain/entity"
)

func mealJSON(name string) string {
	return fmt.Sprintf(`{
		"time": "06:00-07:00",
		"menu_name": "%s menu",
		"ingredients": ["Beras putih (AR001, 50g)", "Ayam dada (AY001, 30g)"],
		"portion": "150 ml",
		"instructions": ["masak", "campur"],
		"nutrition": {"energy_kcal": 145, "protein_g": 6.2, "carbs_g": 20.5, "fat_g": 2.8}
	}`, name)
}

func validMenuJSON(t *testing.T) string {
	t.Helper()
	raw := fmt.Sprintf(`{
		"breakfast": %s,
		"morning_snack": %s,
		"lunch": %s,
		"afternoon_snack": %s,
		"dinner": %s,
		"daily_summary": {
			"total_energy_kcal": 725, "total_protein_g": 31.0,
			"total_carbs_g": 102.5, "total_fat_g": 14.0,
			"akg_compliance": "memenuhi AKG harian"
		},
		"recommendation": "variasikan bahan setiap hari"
	}`, mealJSON("breakfast"), mealJSON("morning snack"), mealJSON("lunch"),
		mealJSON("afternoon snack"), mealJSON("dinner"))
	require.True(t, json.Valid([]byte(raw)))
	return raw
}

// mutateSlot re-renders the fixture with one slot's field replaced.
func mutateSlot(t *testing.T, raw, slot, field string, value any) string {
	t.Helper()
	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &tree))
	m := tree[slot].(map[string]any)
	if parts := strings.SplitN(field, ".", 2); len(parts) == 2 {
		m[parts[0]].(map[string]any)[parts[1]] = value
	} else {
		m[field] = value
	}
	out, err := json.Marshal(tree)
	require.NoError(t, err)
	return string(out)
}

func TestDecode_ValidPlan(t *testing.T) {
	plan, err := NewDecoder().Decode(validMenuJSON(t))
	require.NoError(t, err)

	require.Equal(t, "breakfast menu", plan.Breakfast.MenuName)
	require.Equal(t, "dinner menu", plan.Dinner.MenuName)
	require.Equal(t, 6.2, plan.Lunch.Nutrition.ProteinG)
	require.Equal(t, 725.0, plan.Summary.Totals.EnergyKcal)
	require.Equal(t, "memenuhi AKG harian", plan.Summary.AKGCompliance)
	require.Equal(t, "variasikan bahan setiap hari", plan.Recommendation)
	require.Empty(t, plan.Warnings)

	require.Len(t, plan.Breakfast.Ingredients, 2)
	first := plan.Breakfast.Ingredients[0]
	require.Equal(t, "Beras putih", first.Name)
	require.Equal(t, "AR001", first.Code)
	require.Equal(t, "50g", first.Amount)
	require.Equal(t, "Beras putih (AR001, 50g)", first.Display)
}

func TestDecode_IdempotentOnValidText(t *testing.T) {
	raw := validMenuJSON(t)
	d := NewDecoder()

	first, err := d.Decode(raw)
	require.NoError(t, err)
	second, err := d.Decode(raw)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestDecode_StripsMarkdownFencesAndProse(t *testing.T) {
	raw := "Here is the plan you asked for:\n```json\n" + validMenuJSON(t) + "\n```\nHope it helps!"

	plan, err := NewDecoder().Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "lunch menu", plan.Lunch.MenuName)
}

func TestDecode_TrailingCommentaryWithFenceKeepsPlan(t *testing.T) {
	raw := validMenuJSON(t) + "\n\nHope this helps! You can render it like:\n```\n<table>...</table>\n```"

	plan, err := NewDecoder().Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "breakfast menu", plan.Breakfast.MenuName)
	require.Empty(t, plan.Warnings)
}

func TestDecode_StrayBraceInTrailingProseKeepsPlan(t *testing.T) {
	raw := validMenuJSON(t) + "\nNote: every key is snake_case, e.g. {\"energy_kcal\"}."

	plan, err := NewDecoder().Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "dinner menu", plan.Dinner.MenuName)
	require.Equal(t, 725.0, plan.Summary.Totals.EnergyKcal)
}

func TestDecode_UnterminatedObjectIsExtractionError(t *testing.T) {
	_, err := NewDecoder().Decode(`{"breakfast": {"menu_name": "bubur"`)
	var decErr *entity.DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, entity.StageExtract, decErr.Stage)
}

func TestDecode_NoStructuredBlockIsExtractionError(t *testing.T) {
	for _, raw := range []string{"", "   ", "I cannot produce a menu plan today."} {
		_, err := NewDecoder().Decode(raw)
		var decErr *entity.DecodeError
		require.ErrorAs(t, err, &decErr)
		require.Equal(t, entity.StageExtract, decErr.Stage)
		require.Equal(t, raw, decErr.Raw)
	}
}

func TestDecode_MalformedSyntaxIsParseError(t *testing.T) {
	raw := `{"breakfast": {"menu_name": "bubur",},}`

	_, err := NewDecoder().Decode(raw)
	var decErr *entity.DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, entity.StageParse, decErr.Stage)
	require.Equal(t, raw, decErr.Raw)
}

func TestDecode_MissingDinnerRejectsPlan(t *testing.T) {
	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(validMenuJSON(t)), &tree))
	delete(tree, "dinner")
	raw, err := json.Marshal(tree)
	require.NoError(t, err)

	_, decodeErr := NewDecoder().Decode(string(raw))
	var decErr *entity.DecodeError
	require.ErrorAs(t, decodeErr, &decErr)
	require.Equal(t, entity.StageSlots, decErr.Stage)
	require.Contains(t, decErr.Err.Error(), "dinner")
}

func TestDecode_NonNumericProteinDefaultsWithWarning(t *testing.T) {
	raw := mutateSlot(t, validMenuJSON(t), "morning_snack", "nutrition.protein_g", "lots")

	plan, err := NewDecoder().Decode(raw)
	require.NoError(t, err)

	require.Equal(t, 0.0, plan.MorningSnack.Nutrition.ProteinG)
	require.Len(t, plan.Warnings, 1)
	require.Contains(t, plan.Warnings[0], "morning_snack.nutrition.protein_g")

	// The rest of the plan stays intact.
	require.Equal(t, 6.2, plan.Breakfast.Nutrition.ProteinG)
	require.Equal(t, "dinner menu", plan.Dinner.MenuName)
}

func TestDecode_NumericStringIsCoerced(t *testing.T) {
	raw := mutateSlot(t, validMenuJSON(t), "lunch", "nutrition.energy_kcal", "145.5")

	plan, err := NewDecoder().Decode(raw)
	require.NoError(t, err)
	require.Equal(t, 145.5, plan.Lunch.Nutrition.EnergyKcal)
	require.Empty(t, plan.Warnings)
}

func TestDecode_NegativeNutrientDefaultsWithWarning(t *testing.T) {
	raw := mutateSlot(t, validMenuJSON(t), "dinner", "nutrition.fat_g", -3.5)

	plan, err := NewDecoder().Decode(raw)
	require.NoError(t, err)
	require.Equal(t, 0.0, plan.Dinner.Nutrition.FatG)
	require.Len(t, plan.Warnings, 1)
	require.Contains(t, plan.Warnings[0], "negative")
}

func TestDecode_MissingIngredientsDefaultsToEmptyList(t *testing.T) {
	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(validMenuJSON(t)), &tree))
	delete(tree["breakfast"].(map[string]any), "ingredients")
	raw, err := json.Marshal(tree)
	require.NoError(t, err)

	plan, decodeErr := NewDecoder().Decode(string(raw))
	require.NoError(t, decodeErr)
	require.NotNil(t, plan.Breakfast.Ingredients)
	require.Empty(t, plan.Breakfast.Ingredients)
	require.Len(t, plan.Warnings, 1)
	require.Contains(t, plan.Warnings[0], "breakfast.ingredients")
}

func TestDecode_ObjectFormIngredients(t *testing.T) {
	raw := mutateSlot(t, validMenuJSON(t), "lunch", "ingredients", []any{
		map[string]any{"nama": "Wortel", "kode_tkpi": "SA002", "jumlah": "20g"},
	})

	plan, err := NewDecoder().Decode(raw)
	require.NoError(t, err)
	require.Len(t, plan.Lunch.Ingredients, 1)
	require.Equal(t, "Wortel", plan.Lunch.Ingredients[0].Name)
	require.Equal(t, "SA002", plan.Lunch.Ingredients[0].Code)
	require.Equal(t, "Wortel (SA002, 20g)", plan.Lunch.Ingredients[0].Display)
}

func TestDecode_StringInstructionsBecomeSingleStep(t *testing.T) {
	raw := mutateSlot(t, validMenuJSON(t), "dinner", "instructions", "rebus sampai lunak")

	plan, err := NewDecoder().Decode(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"rebus sampai lunak"}, plan.Dinner.Instructions)
}

func TestDecode_MissingSummaryComputedFromMeals(t *testing.T) {
	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(validMenuJSON(t)), &tree))
	delete(tree, "daily_summary")
	raw, err := json.Marshal(tree)
	require.NoError(t, err)

	plan, decodeErr := NewDecoder().Decode(string(raw))
	require.NoError(t, decodeErr)
	require.InDelta(t, 5*145.0, plan.Summary.Totals.EnergyKcal, 0.001)
	require.Len(t, plan.Warnings, 1)
	require.Contains(t, plan.Warnings[0], "daily_summary")
}

func TestDecodeError_UnwrapsToClassifier(t *testing.T) {
	_, err := NewDecoder().Decode("no json here")
	var decErr *entity.DecodeError
	require.True(t, errors.As(err, &decErr))
}
