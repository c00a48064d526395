package models

import (
	"fmt"
	"time"
)

// Subscriber - групповой чат, в который пересылаются посты канала.
type Subscriber struct {
	ChatID    int64
	Enabled   bool
	Title     string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewSubscriber(chatID int64, title string) *Subscriber {
	return &Subscriber{
		ChatID:  chatID,
		Enabled: false,
		Title:   title,
		Tags:    []string{},
	}
}

func (s *Subscriber) IsEnabled() bool {
	return s.Enabled
}

func (s *Subscriber) Enable() {
	s.Enabled = true
}

func (s *Subscriber) Disable() {
	s.Enabled = false
}

func (s *Subscriber) TagSet() TagSet {
	return NewTagSet(s.Tags...)
}

// SetTags заменяет теги, если новый набор отличается от текущего без учета порядка и регистра.
// Возвращает true, если запись нужно сохранить.
func (s *Subscriber) SetTags(tags TagSet) bool {
	if tags.Equal(s.TagSet()) {
		return false
	}

	s.Tags = tags.Sorted()

	return true
}

func (s *Subscriber) AddTags(tags TagSet) bool {
	return s.SetTags(s.TagSet().Union(tags))
}

func (s *Subscriber) RemoveTags(tags TagSet) bool {
	return s.SetTags(s.TagSet().Difference(tags))
}

// UpdateTags применяет (текущие ∪ toAdd) \ toRemove.
func (s *Subscriber) UpdateTags(toAdd, toRemove TagSet) bool {
	return s.SetTags(s.TagSet().Union(toAdd).Difference(toRemove))
}

func (s *Subscriber) UpdateTitle(title string) bool {
	if s.Title == title {
		return false
	}

	s.Title = title

	return true
}

func (s *Subscriber) Clone() *Subscriber {
	clone := *s
	clone.Tags = append([]string(nil), s.Tags...)

	return &clone
}

func (s *Subscriber) String() string {
	mark := " "
	if s.Enabled {
		mark = "x"
	}

	return fmt.Sprintf("<Subscriber chat_id=%d [%s]>", s.ChatID, mark)
}

// SubscriberDump - переносимое представление записи для выгрузки и загрузки.
type SubscriberDump struct {
	ChatID  int64    `json:"chat_id"`
	Enabled bool     `json:"enabled"`
	Title   *string  `json:"title"`
	Tags    []string `json:"tags"`
}

// DumpFile - формат файла выгрузки.
type DumpFile struct {
	ReceiverGroups []SubscriberDump `json:"ReceiverGroup"`
}

func (s *Subscriber) ToDump() SubscriberDump {
	var title *string
	if s.Title != "" {
		t := s.Title
		title = &t
	}

	return SubscriberDump{
		ChatID:  s.ChatID,
		Enabled: s.Enabled,
		Title:   title,
		Tags:    s.TagSet().Sorted(),
	}
}

func SubscriberFromDump(d SubscriberDump) *Subscriber {
	sub := NewSubscriber(d.ChatID, "")
	sub.Enabled = d.Enabled

	if d.Title != nil {
		sub.Title = *d.Title
	}

	sub.Tags = NewTagSet(d.Tags...).Sorted()

	return sub
}
