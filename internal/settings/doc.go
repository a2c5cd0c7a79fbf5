// Package settings defines the variable-sweep settings model.
//
// A settings document is an ordered mapping from variable name to an
// optional input section (how candidate values are produced) and an
// optional output section (how the final value is derived). Loaders produce
// a Raw document; Validate turns it into typed Settings where every input
// and output is one variant of a closed set, so that unsupported shapes are
// rejected before any value is generated.
package settings
