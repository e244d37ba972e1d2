// Package platformspec turns the platform mapping of the configuration into
// resolved platform targets.
//
// The mapping is YAML: each key is "<os>-<cpu>" and each value is a glob
// pattern or a list of them. Targets come out in mapping order, every
// pattern must match at least one regular file.
package platformspec
