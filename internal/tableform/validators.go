package tableform

import (
	"regexp"
	"sort"
	"strings"
)

// Validator is a named pure predicate over a field's string value.
type Validator struct {
	Name  string
	Check func(string) bool
}

// Valid runs the predicate. A nil validator accepts everything.
func (v *Validator) Valid(value string) bool {
	if v == nil || v.Check == nil {
		return true
	}
	return v.Check(value)
}

var (
	intRe           = regexp.MustCompile(`^\d+$`)
	floatRe         = regexp.MustCompile(`^(\d+|\d+\.\d+|\.\d+)$`)
	versionNumberRe = regexp.MustCompile(`^\d\d?\.\d\d$`)
	versionNameRe   = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+$`)
)

func regexpValidator(name string, re *regexp.Regexp) *Validator {
	return &Validator{Name: name, Check: re.MatchString}
}

// validators holds every name usable in a `validate-` token.
var validators = map[string]*Validator{
	"int":           regexpValidator("int", intRe),
	"float":         regexpValidator("float", floatRe),
	"versionnumber": regexpValidator("versionnumber", versionNumberRe),
	"versionname":   regexpValidator("versionname", versionNameRe),
}

// LookupValidator returns the named validator.
func LookupValidator(name string) (*Validator, bool) {
	v, ok := validators[name]
	return v, ok
}

// ValidatorNames lists the registered validator names, sorted.
func ValidatorNames() []string {
	names := make([]string, 0, len(validators))
	for name := range validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseBool interprets the usual spellings of a boolean cell:
// true/false, yes/no, t/f, y/n, 1/0. ok is false for anything else.
func ParseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}
