package main

// UserRecord is a user who has talked to the bot at least once.
// Rows are never deleted.
type UserRecord struct {
	UserID    int64  `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	FirstName string `gorm:"column:first_name;size:255;not null"`
	Username  string `gorm:"column:username;size:255;not null"`
	JoinedAt  string `gorm:"column:joined_at;size:64;not null"` // RFC 3339, UTC
}

func (UserRecord) TableName() string {
	return "users"
}

// SubscriptionStatus is computed per check and never stored.
type SubscriptionStatus int

const (
	NotSubscribed SubscriptionStatus = iota
	Subscribed
)

func (s SubscriptionStatus) String() string {
	if s == Subscribed {
		return "subscribed"
	}
	return "not-subscribed"
}

// BroadcastSummary is reported to the admin once delivery finishes.
type BroadcastSummary struct {
	Sent   int
	Failed int
}
