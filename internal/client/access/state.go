package access

// State is the access state of one folder.
type State int

const (
	StateUnknown State = iota
	StateLoading
	StatePublic
	StateNeedsPassword
	StateVerified
	StateLoadError
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateLoading:
		return "loading"
	case StatePublic:
		return "public"
	case StateNeedsPassword:
		return "needs_password"
	case StateVerified:
		return "verified"
	case StateLoadError:
		return "load_error"
	default:
		return "invalid"
	}
}

// Granted reports whether file operations are allowed in s.
func (s State) Granted() bool {
	return s == StatePublic || s == StateVerified
}
