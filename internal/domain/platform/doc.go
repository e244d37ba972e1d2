// Package platform defines the platform target model: operating systems,
// CPU architectures, and the classification of build artifacts into
// loadable and static groups.
package platform
