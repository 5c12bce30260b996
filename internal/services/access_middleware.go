package services

const RefusalMessage = "This wizard belongs to someone else."

// AccessMiddleware decides which Telegram users the wizard answers.
type AccessMiddleware struct {
	ownerID int64
}

func NewAccessMiddleware(ownerID int64) *AccessMiddleware {
	return &AccessMiddleware{ownerID: ownerID}
}

// ShouldProcessMessage reports whether userID is served and, if not, the
// text to answer with.
func (m *AccessMiddleware) ShouldProcessMessage(userID int64) (bool, string) {
	if userID == m.ownerID {
		return true, ""
	}
	return false, RefusalMessage
}
