package common

import (
	"fmt"
	"regexp"

	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
)

// PostFilter пропускает только посты исходного канала, в тексте которых найден шаблон.
type PostFilter struct {
	sourceChannelID int64
	pattern         *regexp.Regexp
}

// NewPostFilter: пустой шаблон пропускает любой текст.
func NewPostFilter(sourceChannelID int64, pattern string) (*PostFilter, error) {
	filter := &PostFilter{sourceChannelID: sourceChannelID}

	if pattern == "" {
		return filter, nil
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("некорректный шаблон поста %q: %w", pattern, err)
	}

	filter.pattern = compiled

	return filter, nil
}

func (f *PostFilter) SourceChannelID() int64 {
	return f.sourceChannelID
}

func (f *PostFilter) Accepts(post *models.Post) bool {
	if post.ChatID != f.sourceChannelID {
		return false
	}

	return f.pattern == nil || f.pattern.MatchString(post.Text)
}
