package physics_test

import (
	"testing"

	"github.com/specialistvlad/beamgridgo/internal/formula"
	"github.com/specialistvlad/beamgridgo/internal/physics"
	"github.com/specialistvlad/beamgridgo/internal/ulc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env() formula.Env {
	return formula.Env{
		Functions: formula.Merge(formula.DefaultFunctions(), physics.Functions()),
		Constants: formula.MergeConstants(formula.DefaultConstants(), physics.Constants()),
	}
}

func TestRoundTrips(t *testing.T) {
	rest := physics.ProtonMassMeV
	for _, ke := range []float64{0.1, 10, 250, 7000} {
		g := physics.GammaFromKE(ke, rest)
		assert.InDelta(t, ke, physics.KEFromGamma(g, rest), 1e-9)
		assert.InDelta(t, g, physics.GammaFromBeta(physics.BetaFromGamma(g)), 1e-6)

		p := physics.MomentumFromKE(ke, rest)
		assert.InDelta(t, ke, physics.KEFromMomentum(p, rest), 1e-9)
	}
}

func TestBRho(t *testing.T) {
	// 1 GeV/c singly charged: about 3.3356 T m.
	assert.InDelta(t, 3.3356, physics.BRhoFromMomentum(1000, 1), 1e-4)
}

func TestFormulaCalls(t *testing.T) {
	f, err := formula.Parse("gamma", "gamma_from_ke(ke, electron_mass_mev)")
	require.NoError(t, err)

	got, err := f.Evaluate(map[string]ulc.Value{"ke": ulc.List([]float64{0, physics.ElectronMassMeV})}, env())
	require.NoError(t, err)
	require.True(t, got.IsList())
	assert.InDeltaSlice(t, []float64{1, 2}, got.Floats(), 1e-12)
}

func TestFormulaCalls_WithoutTable(t *testing.T) {
	f, err := formula.Parse("gamma", "gamma_from_ke(ke, 0.511)")
	require.NoError(t, err)

	_, err = f.Evaluate(map[string]ulc.Value{"ke": ulc.Scalar(1)}, formula.DefaultEnv())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown function")
}

func TestFormulaCalls_OutOfDomain(t *testing.T) {
	f, err := formula.Parse("beta", "beta_from_gamma(g)")
	require.NoError(t, err)

	_, err = f.Evaluate(map[string]ulc.Value{"g": ulc.Scalar(0.5)}, env())
	assert.Error(t, err)
}
