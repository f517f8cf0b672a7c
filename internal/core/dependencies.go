package core

import "gnmi-yang-bridge/internal/types"

// dependencyCapabilities turns a module header's imports and includes into
// capabilities. Imports with a revision-date are revision-pinned, the rest
// are versionless. Self references and repeats are dropped.
func dependencyCapabilities(header types.ModuleHeader) []types.Capability {
	seen := map[string]struct{}{}
	var out []types.Capability
	for _, dep := range header.Dependencies() {
		if dep.Name == "" || dep.Name == header.Name {
			continue
		}
		key := dep.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, dep)
	}
	return out
}
