package config

// Merge returns override when any of flagNames was set explicitly, base otherwise
func Merge[T any](ft *FlagTracker, base, override T, flagNames ...string) T {
	if ft.AnySet(flagNames...) {
		return override
	}
	return base
}

// MergeSlice is Merge for slices, ignoring an empty override
func MergeSlice[T any](ft *FlagTracker, base, override []T, flagNames ...string) []T {
	if ft.AnySet(flagNames...) && len(override) > 0 {
		return override
	}
	return base
}
