package platformspec

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/spm-release/internal/domain/platform"
	"github.com/oshokin/spm-release/internal/domain/release"
	"github.com/oshokin/spm-release/internal/logger"
)

var (
	errNotMapping     = errors.New("platform mapping must be a YAML mapping")
	errEmptyMapping   = errors.New("platform mapping is empty")
	errBadValue       = errors.New("platform value must be a path or a list of paths")
	errDuplicateKey   = errors.New("duplicate platform")
	errMissingCPU     = errors.New("platform key must look like <os>-<cpu>")
	errEmptyPattern   = errors.New("empty path pattern")
	errNoResolver     = errors.New("resolver is not set")
	errNilPatternList = errors.New("platform has no path patterns")
)

// Entry is one raw mapping entry before glob expansion.
type Entry struct {
	// Key is the mapping key as written.
	Key string
	// OS is the parsed operating system.
	OS platform.OS
	// CPU is the parsed architecture.
	CPU platform.CPU
	// Patterns are the path patterns as written.
	Patterns []string
}

// Parse decodes the mapping and resolves every pattern with resolver.
func Parse(ctx context.Context, text string, resolver Resolver) ([]platform.Target, error) {
	entries, err := Decode(text)
	if err != nil {
		return nil, err
	}

	return Resolve(ctx, entries, resolver)
}

// Decode parses the YAML mapping without touching the filesystem.
func Decode(text string) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: parse platforms: %w", release.ErrConfiguration, err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: %w", release.ErrConfiguration, errEmptyMapping)
	}

	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %w", release.ErrConfiguration, errNotMapping)
	}

	if len(mapping.Content) == 0 {
		return nil, fmt.Errorf("%w: %w", release.ErrConfiguration, errEmptyMapping)
	}

	var (
		entries = make([]Entry, 0, len(mapping.Content)/2) //nolint:mnd // Key and value nodes.
		seen    = make(map[string]struct{}, len(mapping.Content)/2)
	)

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode, valueNode := mapping.Content[i], mapping.Content[i+1]

		entry, err := decodeEntry(keyNode, valueNode)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", release.ErrConfiguration, keyNode.Line, err)
		}

		canonical := platform.Key(entry.OS, entry.CPU)
		if _, ok := seen[canonical]; ok {
			return nil, fmt.Errorf("%w: line %d: %w %q", release.ErrConfiguration, keyNode.Line, errDuplicateKey, canonical)
		}

		seen[canonical] = struct{}{}
		entries = append(entries, entry)
	}

	return entries, nil
}

func decodeEntry(keyNode, valueNode *yaml.Node) (Entry, error) {
	key := strings.TrimSpace(keyNode.Value)

	osToken, cpuToken, ok := strings.Cut(key, "-")
	if !ok {
		return Entry{}, fmt.Errorf("%w: %w: %q", release.ErrInvalidPlatformKind, errMissingCPU, key)
	}

	os, ok := platform.ParseOS(osToken)
	if !ok {
		return Entry{}, fmt.Errorf("%w: unknown os %q in %q", release.ErrInvalidPlatformKind, osToken, key)
	}

	cpu, ok := platform.ParseCPU(cpuToken)
	if !ok {
		return Entry{}, fmt.Errorf("%w: unknown cpu %q in %q", release.ErrInvalidPlatformKind, cpuToken, key)
	}

	patterns, err := decodePatterns(valueNode)
	if err != nil {
		return Entry{}, fmt.Errorf("%q: %w", key, err)
	}

	return Entry{
		Key:      key,
		OS:       os,
		CPU:      cpu,
		Patterns: patterns,
	}, nil
}

func decodePatterns(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		pattern := strings.TrimSpace(node.Value)
		if pattern == "" || node.Tag == "!!null" {
			return nil, errEmptyPattern
		}

		return []string{pattern}, nil
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			return nil, errNilPatternList
		}

		patterns := make([]string, 0, len(node.Content))

		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, errBadValue
			}

			pattern := strings.TrimSpace(item.Value)
			if pattern == "" || item.Tag == "!!null" {
				return nil, errEmptyPattern
			}

			patterns = append(patterns, pattern)
		}

		return patterns, nil
	default:
		return nil, errBadValue
	}
}

// Resolve expands the patterns of every entry, keeping entry order and
// dropping files already matched by an earlier pattern of the same entry.
func Resolve(ctx context.Context, entries []Entry, resolver Resolver) ([]platform.Target, error) {
	if resolver == nil {
		return nil, fmt.Errorf("%w: %w", release.ErrConfiguration, errNoResolver)
	}

	targets := make([]platform.Target, 0, len(entries))

	for _, entry := range entries {
		var (
			paths []string
			seen  = make(map[string]struct{})
		)

		for _, pattern := range entry.Patterns {
			matches, err := resolver.Resolve(ctx, pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", release.ErrFileResolution, entry.Key, err)
			}

			if len(matches) == 0 {
				return nil, fmt.Errorf("%w: %s: %w for %q", release.ErrFileResolution, entry.Key, release.ErrNoMatchingFiles, pattern)
			}

			for _, match := range matches {
				if _, ok := seen[match]; ok {
					continue
				}

				seen[match] = struct{}{}
				paths = append(paths, match)
			}
		}

		logger.DebugKV(ctx, "Resolved platform files", "platform", entry.Key, "files", paths)

		targets = append(targets, platform.Target{
			OS:    entry.OS,
			CPU:   entry.CPU,
			Paths: paths,
		})
	}

	return targets, nil
}
