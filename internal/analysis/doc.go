// Package analysis provides post-run structural and statistical analysis.
//
//   - [RDF]: radial distribution function g(r) over trajectory frames
//   - [BlockAverage]: mean and standard error of a correlated series
//
// # Structure
//
// The first peak of g(r) sits near the nearest-neighbour distance and the
// running coordination number counts the neighbours within r:
//
//	res, err := analysis.RDF(ctx, frames, box.Length, 100, box.Length/2)
//	peak := res.R[floats.MaxIdx(res.G)]
package analysis
