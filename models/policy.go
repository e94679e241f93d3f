package models

// PolicySet is the set of language codes for which description publishing is
// disallowed. Replaced wholesale on configuration push, never merged.
type PolicySet map[string]struct{}

// DefaultBlockedLanguage is the single built-in entry used when no policy
// has ever been persisted.
const DefaultBlockedLanguage = "en"

// NewPolicySet builds a set from the given codes.
func NewPolicySet(codes ...string) PolicySet {
	set := make(PolicySet, len(codes))
	for _, code := range codes {
		if code == "" {
			continue
		}
		set[code] = struct{}{}
	}
	return set
}

// DefaultPolicySet returns the built-in fallback set.
func DefaultPolicySet() PolicySet {
	return NewPolicySet(DefaultBlockedLanguage)
}

// Contains reports whether the language code is a member of the set.
func (p PolicySet) Contains(languageCode string) bool {
	_, ok := p[languageCode]
	return ok
}

// Codes returns the member codes as a slice. Order is not specified.
func (p PolicySet) Codes() []string {
	codes := make([]string, 0, len(p))
	for code := range p {
		codes = append(codes, code)
	}
	return codes
}
