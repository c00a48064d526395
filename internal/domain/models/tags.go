package models

import (
	"sort"
	"strings"
)

const TagMarker = "#"

// NormalizeTag приводит тег к нижнему регистру и убирает ведущий маркер '#'.
// Убираются все ведущие '#', а не один: иначе "##news" давал бы "#news" и повторный вызов менял бы результат.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(tag), TagMarker))
}

// TagSet хранит нормализованные теги без повторов.
type TagSet map[string]struct{}

func NewTagSet(tags ...string) TagSet {
	set := make(TagSet, len(tags))
	for _, tag := range tags {
		set.Add(tag)
	}

	return set
}

// ParseTags нормализует сырые теги и отдельно возвращает те, что после нормализации оказались пустыми.
func ParseTags(raw []string) (set TagSet, invalid []string) {
	set = make(TagSet, len(raw))

	for _, tag := range raw {
		if NormalizeTag(tag) == "" {
			invalid = append(invalid, tag)
			continue
		}

		set.Add(tag)
	}

	return set, invalid
}

func (s TagSet) Add(tag string) {
	if normalized := NormalizeTag(tag); normalized != "" {
		s[normalized] = struct{}{}
	}
}

func (s TagSet) Contains(tag string) bool {
	_, ok := s[NormalizeTag(tag)]
	return ok
}

func (s TagSet) Len() int {
	return len(s)
}

func (s TagSet) Union(other TagSet) TagSet {
	result := make(TagSet, len(s)+len(other))

	for tag := range s {
		result[tag] = struct{}{}
	}

	for tag := range other {
		result[tag] = struct{}{}
	}

	return result
}

func (s TagSet) Difference(other TagSet) TagSet {
	result := make(TagSet, len(s))

	for tag := range s {
		if _, ok := other[tag]; !ok {
			result[tag] = struct{}{}
		}
	}

	return result
}

func (s TagSet) Intersects(other TagSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}

	for tag := range small {
		if _, ok := large[tag]; ok {
			return true
		}
	}

	return false
}

func (s TagSet) IsSubsetOf(other TagSet) bool {
	if len(s) > len(other) {
		return false
	}

	for tag := range s {
		if _, ok := other[tag]; !ok {
			return false
		}
	}

	return true
}

func (s TagSet) Equal(other TagSet) bool {
	return len(s) == len(other) && s.IsSubsetOf(other)
}

// Sorted возвращает теги в детерминированном порядке для отображения и хранения.
func (s TagSet) Sorted() []string {
	result := make([]string, 0, len(s))
	for tag := range s {
		result = append(result, tag)
	}

	sort.Strings(result)

	return result
}

func (s TagSet) String() string {
	sorted := s.Sorted()
	for i, tag := range sorted {
		sorted[i] = TagMarker + tag
	}

	return strings.Join(sorted, " ")
}
