package util

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsLetterOrUnderscore(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

func IsLetterOrUnderscoreOrNumber(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

// IsInteger reports whether s is a non-empty run of decimal digits.
func IsInteger(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsNumber(s[i]) {
			return false
		}
	}
	return true
}

// IsIdentifier reports whether s is a letter or underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if len(s) == 0 || !IsLetterOrUnderscore(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !IsLetterOrUnderscoreOrNumber(s[i]) {
			return false
		}
	}
	return true
}
