package travel

import "strings"

const RouteSeparator = " → "

// FormatDestinations renders a multi-leg route, falling back to the single
// destination when no legs are recorded.
func FormatDestinations(destination string, destinations []string) string {
	if len(destinations) == 0 {
		return destination
	}
	return strings.Join(destinations, RouteSeparator)
}

func FormatRoute(origin, destination string, destinations []string) string {
	return origin + RouteSeparator + FormatDestinations(destination, destinations)
}
