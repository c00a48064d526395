package common

import (
	"unicode/utf16"

	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
)

// TagEngine извлекает теги из постов и решает, кому пост должен быть доставлен.
type TagEngine struct {
	extending   models.TagSet
	restrictive models.TagSet
}

func NewTagEngine(extendingTags, restrictiveTags []string) *TagEngine {
	return &TagEngine{
		extending:   models.NewTagSet(extendingTags...),
		restrictive: models.NewTagSet(restrictiveTags...),
	}
}

// Known возвращает все теги, на которые может подписаться чат.
func (e *TagEngine) Known() models.TagSet {
	return e.extending.Union(e.restrictive)
}

func (e *TagEngine) ExtendingTags() models.TagSet {
	return e.extending
}

func (e *TagEngine) RestrictiveTags() models.TagSet {
	return e.restrictive
}

// Extract возвращает расширяющие и ограничивающие теги поста.
func (e *TagEngine) Extract(post *models.Post) (extending, restrictive models.TagSet) {
	extending = ExtractTags(post.Text, post.Entities, e.extending)
	restrictive = ExtractTags(post.Text, post.Entities, e.restrictive)

	return extending, restrictive
}

// ExtractTags собирает хэштеги из текста, оставляя только входящие в allowed.
// Смещения сущностей считаются в UTF-16 code units, как их отдает Telegram.
func ExtractTags(text string, entities []models.MessageEntity, allowed models.TagSet) models.TagSet {
	result := models.NewTagSet()
	if text == "" || len(entities) == 0 || len(allowed) == 0 {
		return result
	}

	encoded := utf16.Encode([]rune(text))

	for _, entity := range entities {
		if entity.Type != models.EntityHashtag {
			continue
		}

		start, end := entity.Offset, entity.Offset+entity.Length
		if start < 0 || entity.Length <= 0 || end > len(encoded) {
			continue
		}

		raw := string(utf16.Decode(encoded[start:end]))

		tag := models.NormalizeTag(stripMarker(raw))
		if tag == "" {
			continue
		}

		if _, ok := allowed[tag]; ok {
			result[tag] = struct{}{}
		}
	}

	return result
}

func stripMarker(raw string) string {
	runes := []rune(raw)
	if len(runes) == 0 {
		return raw
	}

	return string(runes[1:])
}

// Matches: все ограничивающие теги поста есть у подписчика и хотя бы один расширяющий совпадает.
// Пост без расширяющих тегов не получает никто.
func Matches(extending, restrictive, subscriberTags models.TagSet) bool {
	return restrictive.IsSubsetOf(subscriberTags) && extending.Intersects(subscriberTags)
}
