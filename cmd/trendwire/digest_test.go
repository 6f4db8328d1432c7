package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NullMeDev/trendwire/pkg/sources"
	"github.com/NullMeDev/trendwire/pkg/topics"
)

func digestSnapshot() *Snapshot {
	hero := func(id, site string) topics.Article {
		return topics.Article{
			ID:       id,
			Title:    "Senate passes budget " + id,
			SiteName: site,
			URL:      "https://example.com/" + id,
			Image:    testImage("https://img.example.com/" + id + ".jpg"),
		}
	}

	return &Snapshot{
		ID:        "0f8c2a9e-4b1d-4c55-9a7e-2d3f1e6b7c80",
		CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Topics: []SnapshotTopic{
			{
				Topic: topics.Topic{
					Main:           topics.Tag{Term: "budget", SourceCount: 3},
					PercentageFreq: 0.25,
					Related:        []topics.Tag{{Term: "senate"}, {Term: "spending bill"}},
					Preview: topics.Preview{
						Politics: []topics.Article{hero("a", "Ledger"), hero("b", "Wire"), hero("c", "Column"), hero("d", "Ledger")},
					},
					SourceCoverage: topics.CoverageResult{
						SourceCount: 4,
						Yes:         []sources.Source{{Name: "Ledger"}, {Name: "Wire"}, {Name: "Column"}},
						No:          []sources.Source{{Name: "Quiet"}},
					},
				},
				Summary: "Lawmakers argue over spending.",
			},
			{
				Topic: topics.Topic{
					Main:           topics.Tag{Term: "trade war", SourceCount: 2},
					SourceCoverage: topics.CoverageResult{SourceCount: 4},
				},
			},
		},
	}
}

func fieldValue(embed *discordgo.MessageEmbed, name string) (string, bool) {
	for _, f := range embed.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func TestBuildDigestEmbeds(t *testing.T) {
	embeds := BuildDigestEmbeds(digestSnapshot())
	require.Len(t, embeds, 2)

	first := embeds[0]
	assert.Equal(t, "#1 Budget", first.Title)
	assert.Equal(t, "Lawmakers argue over spending.", first.Description)
	assert.Equal(t, "2026-10-01T12:00:00Z", first.Timestamp)
	assert.Equal(t, "trendwire batch 0f8c2a9e", first.Footer.Text)
	require.NotNil(t, first.Thumbnail)
	assert.Equal(t, "https://img.example.com/a.jpg", first.Thumbnail.URL)

	coverage, ok := fieldValue(first, "Coverage")
	require.True(t, ok)
	assert.Equal(t, "3/4 sources", coverage)

	share, ok := fieldValue(first, "Share of pool")
	require.True(t, ok)
	assert.Equal(t, "25%", share)

	related, ok := fieldValue(first, "Related")
	require.True(t, ok)
	assert.Equal(t, "senate, spending bill", related)

	headlines, ok := fieldValue(first, "Headlines")
	require.True(t, ok)
	lines := strings.Split(headlines, "\n")
	require.Len(t, lines, DigestHeroLinks)
	assert.Equal(t, "• [Senate passes budget a](https://example.com/a) - Ledger", lines[0])

	second := embeds[1]
	assert.Equal(t, "#2 Trade War", second.Title)
	assert.Nil(t, second.Thumbnail)
	_, ok = fieldValue(second, "Headlines")
	assert.False(t, ok)
	_, ok = fieldValue(second, "Related")
	assert.False(t, ok)
}

func TestDiscordNotifier_PostDigest(t *testing.T) {
	var sent []string
	n := &DiscordNotifier{
		channelID: "123456789012345678",
		send: func(channelID string, embed *discordgo.MessageEmbed) error {
			sent = append(sent, channelID+":"+embed.Title)
			return nil
		},
	}

	require.NoError(t, n.PostDigest(context.Background(), digestSnapshot()))
	assert.Equal(t, []string{
		"123456789012345678:#1 Budget",
		"123456789012345678:#2 Trade War",
	}, sent)

	sent = nil
	require.NoError(t, n.PostDigest(context.Background(), &Snapshot{}))
	assert.Empty(t, sent)
}

func TestDiscordNotifier_SendError(t *testing.T) {
	calls := 0
	n := &DiscordNotifier{
		send: func(string, *discordgo.MessageEmbed) error {
			calls++
			return errors.New("missing access")
		},
	}

	err := n.PostDigest(context.Background(), digestSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing access")
	assert.Equal(t, 1, calls)
}

func TestDiscordNotifier_CancelledContext(t *testing.T) {
	n := &DiscordNotifier{
		send: func(string, *discordgo.MessageEmbed) error {
			t.Fatal("send called after cancel")
			return nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.PostDigest(ctx, digestSnapshot()), context.Canceled)
}
