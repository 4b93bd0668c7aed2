package modem

// The Morse alphabet. Codes are strings over {'0','1'}: '0' is a dot, '1'
// is a dash. This is the canonical 39-entry table from spec.md §3 and
// §6 — letters, digits and '.', ',', '?' only. Deliberately narrower than
// the teacher's own src/morse.go table (which also carries '/', '=', '-',
// ')' and other ARRL/Wikipedia punctuation): recognizing prosigns beyond
// this alphabet is an explicit spec non-goal.
var morseAlphabet = []struct {
	ch   byte
	code string
}{
	{'A', "01"},
	{'B', "1000"},
	{'C', "1010"},
	{'D', "100"},
	{'E', "0"},
	{'F', "0010"},
	{'G', "110"},
	{'H', "0000"},
	{'I', "00"},
	{'J', "0111"},
	{'K', "101"},
	{'L', "0100"},
	{'M', "11"},
	{'N', "10"},
	{'O', "111"},
	{'P', "0110"},
	{'Q', "1101"},
	{'R', "010"},
	{'S', "000"},
	{'T', "1"},
	{'U', "001"},
	{'V', "0001"},
	{'W', "011"},
	{'X', "1001"},
	{'Y', "1011"},
	{'Z', "1100"},
	{'1', "01111"},
	{'2', "00111"},
	{'3', "00011"},
	{'4', "00001"},
	{'5', "00000"},
	{'6', "10000"},
	{'7', "11000"},
	{'8', "11100"},
	{'9', "11110"},
	{'0', "11111"},
	{'.', "010101"},
	{',', "110011"},
	{'?', "001100"},
}

// LookupChar finds the character for a dot/dash string (over '0' = dot,
// '1' = dash), or '?' and false on a miss. Exported for keyer-style
// front-ends that build up a code directly from key-down durations
// instead of going through the Goertzel/segmenter pipeline.
func LookupChar(code string) (byte, bool) {
	return morseLookupChar(code)
}

// morseLookupChar finds the character for a dot/dash string, or '?' and
// false on a miss. Per spec.md §3, a miss is never an error: callers emit
// '?' and continue.
func morseLookupChar(code string) (byte, bool) {
	for _, e := range morseAlphabet {
		if e.code == code {
			return e.ch, true
		}
	}
	return '?', false
}

// morseLookupCode finds the dot/dash string for a character, upper-cased
// first. Returns false if ch has no encoding (e.g. space, or any character
// outside the alphabet).
func morseLookupCode(ch byte) (string, bool) {
	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}
	for _, e := range morseAlphabet {
		if e.ch == ch {
			return e.code, true
		}
	}
	return "", false
}
