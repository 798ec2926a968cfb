// Package diff computes edit scripts between two strings.
//
// Three strategies are available. Chars and Words use the classic O(m·n)
// longest common subsequence table over runes or word tokens; Positions
// compares characters index by index in a single pass. Every result is
// merged: no two adjacent operations share a Kind, and no operation is empty.
//
// For any strategy, Source(ops) == a and Target(ops) == b.
//
//	ops := diff.Words("The quick fox jumps.", "The lazy dog jumps.")
//	// [{Equal "The "} {Delete "quick fox"} {Insert "lazy dog"} {Equal " jumps."}]
package diff
