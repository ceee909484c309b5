package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevWarning is for findings that do not invalidate the tree.
	SevWarning Severity = iota
	// SevError marks input that did not match the grammar.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
