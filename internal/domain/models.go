// Package domain defines the persistence models for match requests, matches,
// messages, and profiles. These types are mapped with GORM and shared by the
// repository and service layers.
package domain

import "time"

// RequestStatus is the lifecycle state of a MatchRequest.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// MatchRequest is a directed proposal from one user to another.
//
// Fields:
//   - ID: UUID primary key.
//   - FromUserID / ToUserID: requester and recipient identifiers (indexed for
//     the outgoing and incoming listings).
//   - Status: pending until the recipient responds, then accepted or rejected.
type MatchRequest struct {
	ID         string        `json:"id"           gorm:"type:char(36);primaryKey"`
	FromUserID string        `json:"from_user_id" gorm:"type:varchar(64);not null;index:idx_req_from,priority:1"`
	ToUserID   string        `json:"to_user_id"   gorm:"type:varchar(64);not null;index:idx_req_to,priority:1"`
	Status     RequestStatus `json:"status"       gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','accepted','rejected')"`
	CreatedAt  time.Time     `json:"created_at"   gorm:"index:idx_req_from,priority:2;index:idx_req_to,priority:2"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// TableName returns the database table name for MatchRequest.
func (MatchRequest) TableName() string { return "match_requests" }

// Match is the symmetric connection created when a request is accepted.
// UserA/UserB keep the direction of the accepted request; PairLow/PairHigh
// hold the same two ids sorted, and their composite unique index allows a
// single row per unordered pair.
type Match struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserA     string    `json:"user_a"     gorm:"type:varchar(64);not null;index"`
	UserB     string    `json:"user_b"     gorm:"type:varchar(64);not null;index"`
	PairLow   string    `json:"-"          gorm:"type:varchar(64);not null;uniqueIndex:ux_match_pair,priority:1"`
	PairHigh  string    `json:"-"          gorm:"type:varchar(64);not null;uniqueIndex:ux_match_pair,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Match.
func (Match) TableName() string { return "matches" }

// Partner returns the party of m that is not userID.
func (m Match) Partner(userID string) string {
	if m.UserA == userID {
		return m.UserB
	}
	return m.UserA
}

// Involves reports whether userID is one of the two parties.
func (m Match) Involves(userID string) bool {
	return m.UserA == userID || m.UserB == userID
}

// CanonicalPair orders two user ids so that (a, b) and (b, a) map to the
// same key.
func CanonicalPair(a, b string) (low, high string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Message types.
const (
	MessageText  = "text"
	MessageImage = "image"
	MessageAudio = "audio"
)

// Message is a private message exchanged inside a match.
//
// Delivered and Seen only ever move from false to true, and Seen implies
// Delivered.
type Message struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	MatchID    string    `json:"match_id"    gorm:"type:char(36);not null;index:idx_match_msgs,priority:1"`
	SenderID   string    `json:"sender_id"   gorm:"type:varchar(64);not null"`
	ReceiverID string    `json:"receiver_id" gorm:"type:varchar(64);not null"`
	Body       string    `json:"message"     gorm:"column:message;type:text;not null;default:''"`
	Type       string    `json:"type"        gorm:"type:varchar(16);not null;default:'text';check:type IN ('text','image','audio')"`
	ImageURL   *string   `json:"image_url"`
	AudioURL   *string   `json:"audio_url"`
	Duration   *float64  `json:"duration"`
	Delivered  bool      `json:"delivered"   gorm:"not null;default:false"`
	Seen       bool      `json:"seen"        gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"  gorm:"index:idx_match_msgs,priority:2"`
	UpdatedAt  time.Time `json:"updated_at"`

	Match Match `json:"-" gorm:"foreignKey:MatchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Profile holds the public identity of a user. UserID is the same opaque
// identifier used on requests, matches, and messages.
type Profile struct {
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);primaryKey"`
	FullName  string    `json:"full_name"  gorm:"type:varchar(255)"`
	Email     string    `json:"email"      gorm:"type:varchar(255)"`
	BirthDate string    `json:"birth_date" gorm:"type:varchar(32)"`
	AvatarURL string    `json:"avatar_url" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// ChatSummary is a read-time projection of one match for one user: the
// partner's identity and the most recent message. It is never persisted.
type ChatSummary struct {
	MatchID         string     `json:"match_id"`
	UserID          string     `json:"user_id"`
	UserName        string     `json:"user_name"`
	UserAvatar      *string    `json:"user_avatar"`
	LastMessage     string     `json:"last_message"`
	LastMessageType string     `json:"last_message_type"`
	LastMessageTime *time.Time `json:"last_message_time"`
}

// PublicMessage is a post in the room every user shares. Posts are
// append-only and read oldest first.
type PublicMessage struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserPhone string    `json:"user_phone" gorm:"type:varchar(64);not null;index"`
	Message   string    `json:"message"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for PublicMessage.
func (PublicMessage) TableName() string { return "public_chat" }

// Subscription records a plan a user activated. Price and DurationDays are
// stored as given; billing happens elsewhere.
type Subscription struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	UserPhone    string    `json:"user_phone"    gorm:"type:varchar(64);not null;index"`
	PlanName     string    `json:"plan_name"     gorm:"type:varchar(128);not null"`
	Price        *float64  `json:"price"`
	DurationDays *int      `json:"duration"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for Subscription.
func (Subscription) TableName() string { return "subscriptions" }
