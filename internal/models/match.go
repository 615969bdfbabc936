package models

// Match is the symmetric relationship between exactly two users. User1ID is
// always the lexicographically smaller ID so an unordered pair maps to a
// single row; the unique index makes concurrent creation collapse to one row.
type Match struct {
	BaseModel
	User1ID string `gorm:"type:uuid;not null;uniqueIndex:idx_match_users" json:"user1Id"`
	User2ID string `gorm:"type:uuid;not null;uniqueIndex:idx_match_users" json:"user2Id"`
}

// TableName specifies the table name for the Match model.
func (Match) TableName() string {
	return "matches"
}

// EnsureCanonicalOrder swaps the user IDs into canonical (sorted) order.
// Must be called before creating a Match record.
func (m *Match) EnsureCanonicalOrder() {
	if m.User1ID > m.User2ID {
		m.User1ID, m.User2ID = m.User2ID, m.User1ID
	}
}

// HasParticipant reports whether the given user is one of the match's two
// participants.
func (m *Match) HasParticipant(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// OtherUser returns the participant that is not the given user.
func (m *Match) OtherUser(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// CanonicalPair returns the two IDs in canonical order without requiring a
// Match value.
func CanonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
