// Package clock provides a tiny time abstraction.
//
// Code generation and countdowns read the wall clock through Clocker, so tests
// can pin time with Manual instead of sleeping across period boundaries.
package clock
