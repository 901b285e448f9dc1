// Package timeline lays reservations out on a month grid.
//
// Each reservation is cut into one segment per week row it visibly touches.
// Segments in a week are stacked on layers so that no two segments sharing a
// layer cover the same day. Layering is greedy and deterministic: it does not
// look for the minimum number of layers, but identical inputs always produce
// identical output.
//
// Compute is the entry point. It is a pure function; callers that render the
// same month repeatedly should memoize on the input.
package timeline
