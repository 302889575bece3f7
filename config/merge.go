package config

// mergeMaps folds src into dst. Sections present on both sides are merged
// key by key; anything else in src replaces what dst had.
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if mv, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				mergeMaps(existing, mv)
				continue
			}
			copied := make(map[string]any, len(mv))
			mergeMaps(copied, mv)
			dst[k] = copied
			continue
		}
		dst[k] = v
	}
}
