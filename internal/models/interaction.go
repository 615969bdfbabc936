package models

// Like is a directed "interested" edge from one user to another. The pair is
// unique per direction; re-liking is an idempotent no-op at the storage layer.
type Like struct {
	BaseModel
	FromUserID string `gorm:"type:uuid;not null;uniqueIndex:idx_like_from_to" json:"fromUserId"`
	ToUserID   string `gorm:"type:uuid;not null;uniqueIndex:idx_like_from_to;index" json:"toUserId"`
}

// TableName specifies the table name for the Like model.
func (Like) TableName() string {
	return "likes"
}

// Pass is a directed "not interested" edge. Structurally identical to Like
// but it never participates in matching; it only filters discovery. Passes
// are permanent: unmatch removes likes, never passes.
type Pass struct {
	BaseModel
	FromUserID string `gorm:"type:uuid;not null;uniqueIndex:idx_pass_from_to" json:"fromUserId"`
	ToUserID   string `gorm:"type:uuid;not null;uniqueIndex:idx_pass_from_to" json:"toUserId"`
}

// TableName specifies the table name for the Pass model.
func (Pass) TableName() string {
	return "passes"
}
