package invite

// Status describes where an invite stands relative to the agenda.
type Status int

const (
	// StatusUnknown means the remote state could not be determined.
	StatusUnknown Status = iota
	// StatusCreated means an event id exists but has not been checked yet.
	StatusCreated
	// StatusMissing means no event exists for the item.
	StatusMissing
	// StatusUnsentDraft means the event matches the agenda but is a draft.
	StatusUnsentDraft
	// StatusSentCurrent means the event matches the agenda and was sent.
	StatusSentCurrent
	// StatusStaleUnsent means the event drifted and is still a draft.
	StatusStaleUnsent
	// StatusStaleSent means the event drifted after being sent.
	StatusStaleSent
)

var statusNames = map[Status]string{
	StatusUnknown:     "unknown",
	StatusCreated:     "created",
	StatusMissing:     "missing",
	StatusUnsentDraft: "unsentDraft",
	StatusSentCurrent: "sentCurrent",
	StatusStaleUnsent: "staleUnsent",
	StatusStaleSent:   "staleSent",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText serializes the status for JSON responses.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ActionRequired reports whether a user or the automation has to act on an
// invite in this state.
func (s Status) ActionRequired() bool {
	switch s {
	case StatusMissing, StatusUnsentDraft, StatusStaleUnsent, StatusStaleSent, StatusUnknown:
		return true
	default:
		return false
	}
}
