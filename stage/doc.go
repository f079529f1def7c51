// Package stage implements the five analysis stages of the pipeline: four
// domain experts (finance, geopolitics, legal, quant) and the consolidator
// that synthesizes their output into a final prediction. Each stage writes
// its outcome into the shared analysis record and never fails the run on
// its own; only context cancellation propagates as an error.
package stage
