package gdpr

// FlagAt reports whether the character at index of an IABTCF bit string is '1'.
// Indexes outside the string read as false.
func FlagAt(source string, index int) bool {
	if index < 0 || index >= len(source) {
		return false
	}
	return source[index] == '1'
}

// purposeFlag reads the flag for a 1-indexed TCF purpose.
func purposeFlag(source string, purpose int) bool {
	return FlagAt(source, purpose-1)
}
