// Package align re-bins irregular instrument logs onto the uniform one-minute
// grid. Each grid step owns the source rows whose timestamps fall between that
// step and the next one; channel values are averaged over those rows.
//
// The row range scanned for a step is found by binary search and capped at a
// fixed number of rows, then narrowed by comparing timestamps, so a step never
// needs an exact end index.
package align
