// Package publisher uploads release assets.
//
// GitHub talks to the GitHub REST API (or a GitHub Enterprise instance).
// Directory stores assets on the local filesystem and backs dry runs.
// Neither retries: every Upload call makes at most one attempt.
package publisher
