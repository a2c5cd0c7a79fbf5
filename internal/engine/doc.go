// Package engine turns a settings document into resolved variable values.
//
// A Configuration validates the settings, generates candidate values for
// every independent variable, expands them into their Cartesian product
// (unless matched lengths are requested), then resolves every output in
// declaration order. Derived variables are resolved on demand, so a formula
// may refer to another derived variable declared later in the document.
//
// Each Gen call works on fresh containers and shares no mutable state with
// other calls, so separate calls may run concurrently.
package engine
