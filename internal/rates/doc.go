// Package rates derives the run-level table: it joins the averaged grid onto
// the daily run grid, corrects gas fractions, converts flows to per-species
// molar units and turns them into consumption rates and per-step totals.
//
// Columns are computed as full passes in dependency order. Every pass reads
// only columns finalized by earlier passes, except the per-step integral,
// which reads the previous row's elapsed time and must run in ascending order.
package rates
