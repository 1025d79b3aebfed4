// Package engine recomputes derived field values until they settle.
//
// Every call recomputes all derived fields in schema order, updating values
// in place within a pass so later fields see earlier results. Passes repeat
// until one produces no change or the pass bound is hit. Cycles such as A
// derived from ${B} and B derived from ${A} simply stop at the bound; they
// are not reported as errors.
package engine
