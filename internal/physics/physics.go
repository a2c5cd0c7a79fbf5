// Package physics provides relativistic kinematics helpers that formulas
// can call once the table is injected into the engine.
//
// Energies and masses are in MeV, momenta in MeV/c, magnetic rigidity in
// tesla metres.
package physics

import (
	"math"

	"github.com/specialistvlad/beamgridgo/internal/formula"
)

const (
	ElectronMassMeV = 0.51099895
	ProtonMassMeV   = 938.27208816
	// SpeedOfLight is in metres per second.
	SpeedOfLight = 299792458.0
)

// Functions returns the physics function table.
func Functions() formula.Functions {
	return formula.Functions{
		"gamma_from_ke":      formula.Binary("gamma_from_ke", "ke", "rest", GammaFromKE),
		"ke_from_gamma":      formula.Binary("ke_from_gamma", "gamma", "rest", KEFromGamma),
		"beta_from_gamma":    formula.Unary("beta_from_gamma", BetaFromGamma),
		"gamma_from_beta":    formula.Unary("gamma_from_beta", GammaFromBeta),
		"momentum_from_ke":   formula.Binary("momentum_from_ke", "ke", "rest", MomentumFromKE),
		"ke_from_momentum":   formula.Binary("ke_from_momentum", "p", "rest", KEFromMomentum),
		"brho_from_momentum": formula.Binary("brho_from_momentum", "p", "charge", BRhoFromMomentum),
	}
}

// Constants returns the particle masses and the speed of light.
func Constants() formula.Constants {
	return formula.Constants{
		"electron_mass_mev": ElectronMassMeV,
		"proton_mass_mev":   ProtonMassMeV,
		"speed_of_light":    SpeedOfLight,
	}
}

// GammaFromKE returns the Lorentz factor of a particle with kinetic energy
// ke and rest energy rest.
func GammaFromKE(ke, rest float64) float64 { return 1 + ke/rest }

func KEFromGamma(gamma, rest float64) float64 { return (gamma - 1) * rest }

// BetaFromGamma is NaN for gamma below one.
func BetaFromGamma(gamma float64) float64 { return math.Sqrt(1 - 1/(gamma*gamma)) }

func GammaFromBeta(beta float64) float64 { return 1 / math.Sqrt(1-beta*beta) }

func MomentumFromKE(ke, rest float64) float64 { return math.Sqrt(ke*ke + 2*ke*rest) }

func KEFromMomentum(p, rest float64) float64 { return math.Hypot(p, rest) - rest }

// BRhoFromMomentum returns the magnetic rigidity for momentum p and a
// charge given in units of the elementary charge.
func BRhoFromMomentum(p, charge float64) float64 { return p * 1e6 / (SpeedOfLight * charge) }
