package common

// UnionBy concatenates the slices, keeping the first element seen for each
// key and the order in which keys first appear.
func UnionBy[S ~[]E, E any, K comparable](key func(E) K, slices ...S) S {
	seen := make(map[K]struct{})

	var out S

	for _, s := range slices {
		for _, e := range s {
			k := key(e)
			if _, ok := seen[k]; ok {
				continue
			}

			seen[k] = struct{}{}
			out = append(out, e)
		}
	}

	return out
}
