// Package metrics computes conserved quantities of a body set and provides
// Metric implementations that track their drift over a run.
package metrics
