// Package config defines the inputs of a release run and builds them from a
// YAML file, the environment (including GitHub Actions inputs) and flags.
//
// Validate derives owner, repository name, tag and version, fills defaults
// such as the asset naming template and the per-OS archive formats, and
// reports every problem as a configuration error.
package config
