package tableform

import "fmt"

// Kind is the closed set of column kinds.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindText
	KindBoolean
	KindEditControl
	KindDeleteControl
)

// String returns the type token used in header classes.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindEditControl:
		return "_edit"
	case KindDeleteControl:
		return "_delete"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText encodes the kind as its type token.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// IsControl reports whether the column holds a row action rather than data.
func (k Kind) IsControl() bool {
	return k == KindEditControl || k == KindDeleteControl
}

// parseDataKind maps a `type-` token to a data kind.
// Control kinds are only reachable through the reserved keys.
func parseDataKind(s string) (Kind, bool) {
	switch s {
	case "string":
		return KindString, true
	case "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	case "text":
		return KindText, true
	case "boolean":
		return KindBoolean, true
	default:
		return 0, false
	}
}

// Widget is the editor element a column uses.
type Widget int

const (
	WidgetTextInput Widget = iota
	WidgetTextArea
	WidgetToggle
	WidgetEditLink
	WidgetDeleteLink
)

// Widget returns the editor widget for the kind.
func (k Kind) Widget() Widget {
	switch k {
	case KindString, KindInt, KindFloat:
		return WidgetTextInput
	case KindText:
		return WidgetTextArea
	case KindBoolean:
		return WidgetToggle
	case KindEditControl:
		return WidgetEditLink
	case KindDeleteControl:
		return WidgetDeleteLink
	}
	panic(fmt.Sprintf("tableform: no widget for %v", k))
}

// defaultValidator returns the validator a kind gets when the header names none.
func (k Kind) defaultValidator() *Validator {
	switch k {
	case KindInt:
		return validators["int"]
	case KindFloat:
		return validators["float"]
	case KindString, KindText, KindBoolean, KindEditControl, KindDeleteControl:
		return nil
	}
	panic(fmt.Sprintf("tableform: unknown kind %v", k))
}
