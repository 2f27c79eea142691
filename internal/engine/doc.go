// Package engine evaluates pair energies, virials and forces for a
// periodic box under a truncated pair potential.
//
// Two entry points mirror the two drivers:
//
//   - [Engine.MolecularEnergyAndVirial]: one particle against all others,
//     O(N), used by Monte Carlo trial moves
//   - [Engine.TotalPairEnergyAndVirial]: the whole system, O(N²), used by
//     molecular dynamics and for initial totals
//
// Both apply the minimum-image convention and mask pairs at or beyond the
// cutoff. When the potential carries a switching function, energies are
// multiplied by S(r) and the virial (and therefore the force) uses the
// consistent derivative -r·d(S·U)/dr.
//
// # Thread Safety
//
// An Engine holds no per-call state and may be shared, but a Box must not
// be passed to concurrent calls when forces are requested.
package engine
