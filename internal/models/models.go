package models

import "strings"

// Status values a user moves through during a session.
type Status string

const (
	StatusStarted  Status = "started"
	StatusShowPage Status = "show_page"
	StatusAdmin    Status = "admin"
)

// SubjectSeparator joins the inferred category labels into the single
// string column the subjects are persisted as.
const SubjectSeparator = "&"

// UserStatus tracks one user's conversational state: where they are in the
// flow, the current recommendation page, and the cached top-3 categories
// from their last analysis.
type UserStatus struct {
	UserID   int64  `db:"user_id" json:"user_id"`
	Status   Status `db:"status" json:"status"`
	Page     int    `db:"page" json:"page"`
	Subjects string `db:"subjects" json:"subjects"`
}

// SubjectList splits the serialized subjects back into the ordered labels.
// Returns nil when no analysis has completed yet.
func (u *UserStatus) SubjectList() []string {
	if u.Subjects == "" {
		return nil
	}
	return strings.Split(u.Subjects, SubjectSeparator)
}

// SetSubjects stores the ordered labels, preserving their ranking order.
func (u *UserStatus) SetSubjects(subjects []string) {
	u.Subjects = strings.Join(subjects, SubjectSeparator)
}

// GroupRecord is one catalogued VK group. The same shape backs both the
// candidate catalog (raw ingestion, unlabeled) and the curated catalog
// (admin-approved, labeled with the production taxonomy).
type GroupRecord struct {
	GroupID int64  `db:"group_id" json:"group_id"`
	Name    string `db:"name" json:"name"`
	Subject string `db:"subject" json:"subject"`
	Link    string `db:"link" json:"link"`
}

// Post is a single wall post as seen by the content fetcher.
type Post struct {
	Text        string `json:"text"`
	MarkedAsAds bool   `json:"marked_as_ads"`
}
