// Package micmac implements MICMAC cross-impact analysis: influence and
// dependence scoring from a weighted adjacency matrix and its powers, and
// the four-way structural classification.
//
// # Scores
//
// For adjacency matrix A, a node's influence is its row sum over
// A + A² + A³ and its dependence is its column sum over the same matrix.
// Exactly three hops of propagation are counted; nothing is normalised.
//
// # Classes
//
// [Classify] maps (influence, dependence) to one of [Driver], [Dependent],
// [Linkage] or [Autonomous]. The mapping is a pure function of the pair and
// is recomputed whenever scores are.
package micmac
