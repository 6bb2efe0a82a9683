// Package common contains common shared types, variables and constants used
// throughout the project
package common

// NotificationType is the kind of event a notification informs about
type NotificationType uint8

const (
	// Mention of the recipient in a message body
	Mention NotificationType = iota

	// Quote is a direct reply to one of the recipient's replies
	Quote

	// Reply to a topic started by the recipient
	Reply

	// Thought is a smiley reaction to the recipient's message
	Thought
)

func (t NotificationType) String() string {
	switch t {
	case Mention:
		return "mention"
	case Quote:
		return "quote"
	case Reply:
		return "reply"
	case Thought:
		return "thought"
	default:
		return "unknown"
	}
}

// MessageBody contains the raw and rendered forms of a message's text
type MessageBody struct {
	OriginalBody string `json:"originalBody"`
	DisplayBody  string `json:"displayBody"`
	ShortPreview string `json:"shortPreview"`
	LongPreview  string `json:"longPreview"`
	Cards        string `json:"cards"`
}

// ProcessedMessage is the output of the message processing pipeline
type ProcessedMessage struct {
	MessageBody
	MentionedUsers []string `json:"mentionedUsers"`
}

// Message is either a topic root (ParentID == 0) or a reply inside a topic
type Message struct {
	MessageBody
	Processed       bool   `json:"processed"`
	ID              uint64 `json:"id"`
	ParentID        uint64 `json:"parentId"`
	ReplyID         uint64 `json:"replyId"`
	LastReplyID     uint64 `json:"lastReplyId"`
	ReplyCount      uint64 `json:"replyCount"`
	TimePosted      int64  `json:"timePosted"`
	TimeEdited      int64  `json:"timeEdited"`
	LastReplyPosted int64  `json:"lastReplyPosted"`
	PostedByID      string `json:"postedById"`
	EditedByID      string `json:"editedById"`
	LastReplyByID   string `json:"lastReplyById"`
}

// TopicID returns the ID of the topic the message belongs to
func (m Message) TopicID() uint64 {
	if m.ParentID != 0 {
		return m.ParentID
	}
	return m.ID
}

// Notification informs UserID about an action TargetUserID performed on a
// message
type Notification struct {
	Unread       bool             `json:"unread"`
	Type         NotificationType `json:"type"`
	ID           uint64           `json:"id"`
	MessageID    uint64           `json:"messageId"`
	Time         int64            `json:"time"`
	UserID       string           `json:"userId"`
	TargetUserID string           `json:"targetUserId"`
}

// Participant records, that a user has posted in a topic
type Participant struct {
	TopicID uint64 `json:"topicId"`
	Time    int64  `json:"time"`
	UserID  string `json:"userId"`
}

// MessageThought is a smiley reaction of a user to a message
type MessageThought struct {
	MessageID uint64 `json:"messageId"`
	SmileyID  uint64 `json:"smileyId"`
	UserID    string `json:"userId"`
}

// Board is a category topics can be posted to
type Board struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// User is a registered forum account
type User struct {
	Admin       bool   `json:"admin"`
	ID          string `json:"id"`
	UserName    string `json:"userName"`
	DisplayName string `json:"displayName"`
}
