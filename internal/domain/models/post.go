package models

const EntityHashtag = "hashtag"

// MessageEntity размечает фрагмент текста; Offset и Length заданы в UTF-16 code units.
type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

type Post struct {
	ChatID    int64           `json:"chat_id"`
	MessageID int             `json:"message_id"`
	Text      string          `json:"text"`
	Entities  []MessageEntity `json:"entities"`
}

type DispatchResult struct {
	DispatchID  string
	Extending   TagSet
	Restrictive TagSet
	Candidates  int
	Matched     int
	Forwarded   int
	Rejected    int
	Failed      int
}
