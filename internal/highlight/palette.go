package highlight

// palette is the fixed, ordered set of highlight color classes. Styles
// for these classes live with the UI.
var palette = []string{
	"hl-yellow",
	"hl-green",
	"hl-blue",
	"hl-pink",
	"hl-orange",
	"hl-purple",
}

// ColorIndex derives a stable palette index from the tail of the owner's
// user id, so the same member's highlights always render in the same
// color. The last four characters are summed with position weights
// before reducing modulo the palette size.
func ColorIndex(userID string) int {
	tail := userID
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}

	sum := 0
	for i, c := range tail {
		sum += (i + 1) * int(c)
	}
	if sum < 0 {
		sum = -sum
	}
	return sum % len(palette)
}

// ColorClass returns the CSS class assigned to the user's highlights.
func ColorClass(userID string) string {
	return palette[ColorIndex(userID)]
}
