package wallet

// AddressHalfWidth is how many characters of an address are kept on each side.
const AddressHalfWidth = 15

// Truncate keeps the first and last n characters of s joined by "..".
// n is clamped to len(s)/2 so short identifiers never index out of range.
func Truncate(s string, n int) string {
	n = max(0, min(n, len(s)/2))
	return s[:n] + ".." + s[len(s)-n:]
}
