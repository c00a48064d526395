package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
)

func TestNewSubscriber_Defaults(t *testing.T) {
	sub := models.NewSubscriber(-100, "Group")

	assert.Equal(t, int64(-100), sub.ChatID)
	assert.False(t, sub.IsEnabled())
	assert.Equal(t, "Group", sub.Title)
	assert.Empty(t, sub.Tags)
}

func TestSubscriber_EnableDisable(t *testing.T) {
	sub := models.NewSubscriber(1, "")

	sub.Enable()
	assert.True(t, sub.IsEnabled())

	sub.Enable()
	assert.True(t, sub.IsEnabled())

	sub.Disable()
	assert.False(t, sub.IsEnabled())
}

func TestSubscriber_SetTags_SecondCallIsNoop(t *testing.T) {
	sub := models.NewSubscriber(1, "")

	assert.True(t, sub.SetTags(models.NewTagSet("Sports", "news")))
	assert.Equal(t, []string{"news", "sports"}, sub.Tags)

	assert.False(t, sub.SetTags(models.NewTagSet("#NEWS", "sports")))
	assert.Equal(t, []string{"news", "sports"}, sub.Tags)
}

func TestSubscriber_UpdateTags(t *testing.T) {
	sub := models.NewSubscriber(1, "")

	changed := sub.UpdateTags(models.NewTagSet("a", "b"), models.NewTagSet("a"))

	assert.True(t, changed)
	assert.Equal(t, []string{"b"}, sub.Tags)
}

func TestSubscriber_AddRemoveTags(t *testing.T) {
	sub := models.NewSubscriber(1, "")

	assert.True(t, sub.AddTags(models.NewTagSet("news")))
	assert.False(t, sub.AddTags(models.NewTagSet("NEWS")))
	assert.True(t, sub.AddTags(models.NewTagSet("sports")))
	assert.Equal(t, []string{"news", "sports"}, sub.Tags)

	assert.False(t, sub.RemoveTags(models.NewTagSet("tech")))
	assert.True(t, sub.RemoveTags(models.NewTagSet("news")))
	assert.Equal(t, []string{"sports"}, sub.Tags)
}

func TestSubscriber_UpdateTitle(t *testing.T) {
	sub := models.NewSubscriber(1, "Old")

	assert.False(t, sub.UpdateTitle("Old"))
	assert.True(t, sub.UpdateTitle("New"))
	assert.Equal(t, "New", sub.Title)

	assert.True(t, sub.UpdateTitle(""))
	assert.Equal(t, "", sub.Title)
}

func TestSubscriber_CloneIsIndependent(t *testing.T) {
	sub := models.NewSubscriber(1, "Group")
	sub.Tags = []string{"news"}

	clone := sub.Clone()
	clone.Tags[0] = "sports"
	clone.Enable()

	assert.Equal(t, []string{"news"}, sub.Tags)
	assert.False(t, sub.IsEnabled())
}

func TestSubscriber_DumpRoundTrip(t *testing.T) {
	original := models.NewSubscriber(-1001, "Group")
	original.Enable()
	original.Tags = []string{"sports", "news"}

	restored := models.SubscriberFromDump(original.ToDump())

	assert.Equal(t, original.ChatID, restored.ChatID)
	assert.Equal(t, original.Enabled, restored.Enabled)
	assert.Equal(t, original.Title, restored.Title)
	assert.True(t, original.TagSet().Equal(restored.TagSet()))
}

func TestSubscriber_DumpEmptyTitleIsNull(t *testing.T) {
	dump := models.NewSubscriber(5, "").ToDump()

	require.Nil(t, dump.Title)
	assert.Equal(t, "", models.SubscriberFromDump(dump).Title)
}

func TestParseCommandType(t *testing.T) {
	assert.Equal(t, models.CommandEnable, models.ParseCommandType("/enable"))
	assert.Equal(t, models.CommandUnknown, models.ParseCommandType("/track"))
	assert.True(t, models.ChatSupergroup.IsGroup())
	assert.False(t, models.ChatPrivate.IsGroup())
}
