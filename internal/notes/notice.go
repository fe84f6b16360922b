package notes

// NoticeKind classifies a user-facing notice.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeWarning
	// NoticeSaved follows an explicit save.
	NoticeSaved
	// NoticeAutosaved follows a debounced write.
	NoticeAutosaved
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeWarning:
		return "warning"
	case NoticeSaved:
		return "saved"
	case NoticeAutosaved:
		return "autosaved"
	default:
		return "info"
	}
}

// Notice is an informational message for the user. Notices are not errors:
// the operation that emitted one completed (or was refused) normally.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Notifier receives notices. It is never called with the store lock held,
// so it may call back into the store.
type Notifier func(Notice)
