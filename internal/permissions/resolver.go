package permissions

import "slices"

// Resolve computes the effective permission set for one staff record:
// role defaults, union custom grants, minus denials. Denial is applied
// last and is absolute; a permission both granted and denied is denied.
//
// The result is ordered and duplicate-free. Resolve is a pure function:
// it is idempotent and independent of the order or duplication of the
// custom and denied inputs.
func Resolve(role Role, custom, denied []Permission) []Permission {
	deniedSet := make(map[Permission]struct{}, len(denied))
	for _, p := range denied {
		deniedSet[p] = struct{}{}
	}

	seen := make(map[Permission]struct{})

	var effective []Permission

	add := func(p Permission) {
		if _, isDenied := deniedSet[p]; isDenied {
			return
		}

		if _, dup := seen[p]; dup {
			return
		}

		seen[p] = struct{}{}
		effective = append(effective, p)
	}

	for _, p := range DefaultPermissions(role) {
		add(p)
	}

	custom = slices.Clone(custom)
	slices.Sort(custom)

	for _, p := range custom {
		add(p)
	}

	return effective
}

// ResolveStrings is Resolve over raw persisted string arrays, converting
// at the boundary so callers never pass raw JSON-decoded slices through
// the resolver.
func ResolveStrings(role string, custom, denied []string) []Permission {
	return Resolve(ParseRole(role), toPermissions(custom), toPermissions(denied))
}

func toPermissions(tags []string) []Permission {
	if len(tags) == 0 {
		return nil
	}

	out := make([]Permission, len(tags))
	for i, tag := range tags {
		out[i] = Permission(tag)
	}

	return out
}
