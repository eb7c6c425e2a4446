package utils

// FindIndexFunc returns the index of the first element match accepts, -1 if there is none
func FindIndexFunc[T any](slice []T, match func(T) bool) int {
	for i, v := range slice {
		if match(v) {
			return i
		}
	}
	return -1
}
