package format

import "unicode"

// caseFormat is the capitalisation of one identifier.
type caseFormat int

const (
	lowercase  caseFormat = iota // foo, foo_bar
	uppercase                    // FOO, FOO_BAR
	lowerCamel                   // fooBar
	upperCamel                   // FooBar
)

func caseFormatOf(name string) caseFormat {
	first := true
	firstUpper, hasUpper, hasLower := false, false, false
	for _, r := range name {
		if !unicode.IsLetter(r) {
			continue
		}
		if first {
			firstUpper = unicode.IsUpper(r)
			first = false
		}
		hasUpper = hasUpper || unicode.IsUpper(r)
		hasLower = hasLower || unicode.IsLower(r)
	}
	switch {
	case firstUpper && hasLower:
		return upperCamel
	case firstUpper:
		return uppercase
	case hasUpper:
		return lowerCamel
	}
	return lowercase
}

// typeNameState is the state of a scan over a dotted name looking for the
// longest prefix shaped like `pkg.Outer.Inner.member`.
type typeNameState int

const (
	stateStart typeNameState = iota
	stateType
	stateFirstStaticMember
	stateAmbiguous
	stateReject
)

// singleUnit reports whether the names scanned so far form a unit.
func (s typeNameState) singleUnit() bool {
	return s == stateType || s == stateFirstStaticMember
}

func (s typeNameState) next(f caseFormat) typeNameState {
	switch s {
	case stateStart:
		switch f {
		case uppercase:
			// FOO could still turn out to be a class if a type follows.
			return stateAmbiguous
		case lowerCamel:
			return stateReject
		case lowercase:
			return stateStart
		}
		return stateType
	case stateType:
		if f == upperCamel {
			return stateType
		}
		return stateFirstStaticMember
	case stateAmbiguous:
		switch f {
		case uppercase:
			return stateAmbiguous
		case upperCamel:
			return stateType
		}
		return stateReject
	}
	return stateReject
}

// typePrefixLength returns the index of the last name in the longest
// prefix of names that looks like a type name or a static member of one,
// and false when there is none.
func typePrefixLength(names []string) (int, bool) {
	state := stateStart
	length, ok := 0, false
	for i, name := range names {
		state = state.next(caseFormatOf(name))
		if state == stateReject {
			break
		}
		if state.singleUnit() {
			length, ok = i, true
		}
	}
	return length, ok
}
