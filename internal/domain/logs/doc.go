// Package logs classifies, retains and exports captured process output.
//
// DetectLevel is a pure function over a line and its stream. Buffer is a
// fixed-capacity FIFO of entries that evicts the oldest entry first.
// Export writes a buffer snapshot as plain text, one entry per line.
package logs
