package storage

// Persisted keys. Their names are part of the on-disk format.
const (
	KeyUsers          = "loandesk.auth.users"
	KeySessions       = "loandesk.auth.sessions"
	KeyCurrentSession = "loandesk.auth.current_session"
	KeyApplications   = "loandesk.applications"
	KeyApplicationSeq = "loandesk.applications.seq"
	KeySentEmails     = "loandesk.sent_emails"
)

// IsAuthKey reports whether key holds users or sessions.
func IsAuthKey(key string) bool {
	switch key {
	case KeyUsers, KeySessions, KeyCurrentSession:
		return true
	}
	return false
}
