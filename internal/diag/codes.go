package diag

import "fmt"

// Code is a stable numeric identifier for one failure family.
type Code uint16

const (
	UnknownCode Code = 0

	// Lookup misses (1000)
	UndefinedAttribute Code = 1001
	UndefinedMethod    Code = 1002
	UndefinedConstant  Code = 1003

	// Duplicate definitions (2000)
	RedefineExistingLocal     Code = 2001
	RedefineExistingAttribute Code = 2002
	RedefineExistingConstant  Code = 2003

	// Invalid use (3000)
	MutableConstant     Code = 3001
	ReopenInvalidObject Code = 3002
	NotAMethod          Code = 3003
	InvalidType         Code = 3004

	// Warnings (4000)
	Unreachable Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:               "unknown diagnostic",
	UndefinedAttribute:        "undefined attribute",
	UndefinedMethod:           "undefined method",
	UndefinedConstant:         "undefined constant",
	RedefineExistingLocal:     "local variable is already defined",
	RedefineExistingAttribute: "attribute is already defined",
	RedefineExistingConstant:  "constant is already defined",
	MutableConstant:           "constants cannot be defined as mutable",
	ReopenInvalidObject:       "only objects can be reopened",
	NotAMethod:                "attribute is not a method",
	InvalidType:               "expression produced an unexpected type",
	Unreachable:               "unreachable code",
}

// ID renders the stable string form of the code, e.g. LKP1001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LKP%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("DEF%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("USE%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("WRN%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// DefaultSeverity is the severity a code carries unless a producer overrides
// it. Unreachable is advisory, everything else is an error.
func (c Code) DefaultSeverity() Severity {
	if c >= 4000 && c < 5000 {
		return SevWarning
	}
	return SevError
}
