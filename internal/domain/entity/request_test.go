package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validRequest() PlanRequest {
	return PlanRequest{AgeMonths: 8, WeightKg: 8.5, HeightCm: 70}
}

func TestNormalize_DefaultsBackend(t *testing.T) {
	req := validRequest()
	require.NoError(t, req.Normalize())
	require.Equal(t, BackendGemini, req.Backend)
}

func TestNormalize_DeduplicatesAllergiesCaseInsensitive(t *testing.T) {
	req := validRequest()
	req.Allergies = []string{"Kacang", "kacang ", "TELUR", "telur", "  "}

	require.NoError(t, req.Normalize())
	require.Equal(t, []string{"kacang", "telur"}, req.Allergies)
}

func TestNormalize_RejectsOutOfBandAge(t *testing.T) {
	for _, age := range []int{0, 5, 25, -3} {
		req := validRequest()
		req.AgeMonths = age
		err := req.Normalize()
		require.ErrorIs(t, err, ErrInvalidRequest, "age %d", age)
	}
}

func TestNormalize_RejectsNonPositiveMeasurements(t *testing.T) {
	req := validRequest()
	req.WeightKg = 0
	require.ErrorIs(t, req.Normalize(), ErrInvalidRequest)

	req = validRequest()
	req.HeightCm = -1
	require.ErrorIs(t, req.Normalize(), ErrInvalidRequest)
}

func TestNormalize_RejectsUnknownBackend(t *testing.T) {
	req := validRequest()
	req.Backend = "claude"
	require.ErrorIs(t, req.Normalize(), ErrUnknownBackend)
}
