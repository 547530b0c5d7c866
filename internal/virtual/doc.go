// Package virtual computes which rows of a long list need to be rendered for a
// given viewport.
//
// A Virtualizer is fed scroll offsets, viewport sizes, the item count and
// (optionally) measured item heights by its host, and answers with a Window:
// the overscan-expanded index range, the offset of every row in it and the
// total scrollable height. Item heights come from a Resolver chosen once at
// construction:
//
//   - Fixed: every item has the same height. Ranges are computed in O(1).
//   - Computed: a pure function of the index.
//   - Measured: heights reported by the host after rendering, falling back to
//     an estimate for items that have not been measured yet.
//
// Computed and Measured lists are served from an OffsetIndex (a Fenwick tree
// over item heights), so a recompute costs O(log n + window) instead of a full
// pass. Compute is the linear reference pass and is kept for callers that do
// not need a long-lived Virtualizer.
package virtual
