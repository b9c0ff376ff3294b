package lending

// validPatronID reports whether id is exactly PatronIDLength ASCII digits
func (p Policy) validPatronID(id string) bool {
	if len(id) != p.PatronIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

func (p Policy) validBookIDRange(id int) bool {
	return id >= 1 && id <= p.MaxBookID
}

// ValidPatronID reports whether id is a well-formed library card number
func ValidPatronID(id string) bool {
	return DefaultPolicy().validPatronID(id)
}
