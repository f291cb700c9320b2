package utils

// Truncate caps s at maxLen bytes, appending an ellipsis when it was cut.
// Search result previews are bounded with this; stored text never is.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
