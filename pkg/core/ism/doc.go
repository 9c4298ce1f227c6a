// Package ism implements Interpretive Structural Modeling over a problem
// network: reachability closure and level partitioning.
//
// # Reachability
//
// [Reachability] starts from the identity relation (every node reaches
// itself), adds one entry per valid edge, and closes the relation with
// Warshall's algorithm ([BoolMatrix.Close]). After closure r[i][j] is true
// iff a directed path of length zero or more leads from i to j.
//
// # Levels
//
// [Partition] peels the closed relation into levels. Level 1 holds the most
// downstream nodes, those that reach nothing besides themselves. Each later
// level holds the nodes whose remaining reachability is exhausted by the
// levels already placed, so higher levels are further upstream.
//
// Nodes on a common cycle reach each other. In [ModeCycleAware] (the
// default) they are placed together once everything else they reach is
// placed. [ModeStrict] applies the bare rule, under which a cycle never
// qualifies and falls through to the fallback level.
//
// If a round finds no candidate, all remaining nodes are assigned to one
// final level and [Levels.Fallback] is set, so partitioning always
// terminates.
//
// # Example
//
//	A → B → C
//
// closes to A:{A,B,C}, B:{B,C}, C:{C} and levels as 1={C}, 2={B}, 3={A}.
package ism
