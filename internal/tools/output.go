package tools

// truncationMarker marks truncated output.
const truncationMarker = "\n... [truncated]"

// clipOutput trims output to max bytes, appending a truncation marker.
// A max of zero or less disables clipping.
func clipOutput(output string, max int) string {
	if max <= 0 || len(output) <= max {
		return output
	}
	if max <= len(truncationMarker) {
		return truncationMarker[:max]
	}
	return output[:max-len(truncationMarker)] + truncationMarker
}
