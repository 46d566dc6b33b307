package usecase

import (
	"fmt"
	"strings"

	"mpasi-planner/internal/domain/entity"
)

// PlanQueries derives the two retrieval queries from a request: one for
// feeding rules and AKG nutrient targets, one for ingredient categories.
// The intents are fixed; the child's facts are only embedded as natural
// language context so similar datasets score similar chunks. Pure function.
func PlanQueries(req entity.PlanRequest) (rulesQuery, ingredientsQuery string) {
	ruleParts := []string{
		fmt.Sprintf("Aturan MPASI dan AKG angka kecukupan gizi untuk usia %d bulan tekstur porsi frekuensi makan", req.AgeMonths),
		fmt.Sprintf("kebutuhan energi protein bayi berat %.1f kg tinggi %.1f cm", req.WeightKg, req.HeightCm),
	}
	if req.Residence != "" {
		ruleParts = append(ruleParts, "anjuran MPASI lokal di "+req.Residence)
	}
	rulesQuery = strings.Join(ruleParts, " ")

	ingredientsQuery = fmt.Sprintf(
		"Bahan makanan MPASI untuk usia %d bulan protein hewani protein nabati "+
			"sumber karbohidrat sayuran buah lemak sehat", req.AgeMonths)

	return rulesQuery, ingredientsQuery
}
