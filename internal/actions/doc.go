// Package actions writes step outputs and workflow commands understood by
// GitHub Actions runners. Outside a runner, outputs go to a plain writer.
package actions
