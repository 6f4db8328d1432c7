package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NullMeDev/trendwire/pkg/topics"
)

// Notifier posts a snapshot somewhere people will read it
type Notifier interface {
	PostDigest(ctx context.Context, snap *Snapshot) error
}

const (
	digestColor      = 0x880088
	digestFooterText = "trendwire"
)

// DiscordNotifier posts one embed per topic to a channel
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
	send      func(channelID string, embed *discordgo.MessageEmbed) error
}

// NewDiscordNotifier creates a REST-only session for the bot token
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %v", err)
	}

	n := &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
	n.send = func(channelID string, embed *discordgo.MessageEmbed) error {
		_, err := n.session.ChannelMessageSendEmbed(channelID, embed)
		return err
	}
	return n, nil
}

// PostDigest implements Notifier
func (n *DiscordNotifier) PostDigest(ctx context.Context, snap *Snapshot) error {
	if snap == nil || len(snap.Topics) == 0 {
		return nil
	}

	for _, embed := range BuildDigestEmbeds(snap) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := n.send(n.channelID, embed); err != nil {
			return fmt.Errorf("failed to send digest embed: %v", err)
		}
	}
	Logger().Info("Posted digest for batch %s to channel %s", snap.ID, n.channelID)
	return nil
}

// BuildDigestEmbeds renders one embed per topic
func BuildDigestEmbeds(snap *Snapshot) []*discordgo.MessageEmbed {
	embeds := make([]*discordgo.MessageEmbed, 0, len(snap.Topics))
	for i, t := range snap.Topics {
		embeds = append(embeds, topicEmbed(i+1, t, snap))
	}
	return embeds
}

func topicEmbed(rank int, t SnapshotTopic, snap *Snapshot) *discordgo.MessageEmbed {
	coverage := t.SourceCoverage
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("#%d %s", rank, cases.Title(language.English).String(t.Main.Term)),
		Description: t.Summary,
		Color:       digestColor,
		Timestamp:   snap.CreatedAt.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Coverage",
				Value:  fmt.Sprintf("%d/%d sources", len(coverage.Yes), coverage.SourceCount),
				Inline: true,
			},
			{
				Name:   "Share of pool",
				Value:  fmt.Sprintf("%s%%", humanize.FtoaWithDigits(t.PercentageFreq*100, 1)),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%s batch %s", digestFooterText, shortID(snap.ID)),
		},
	}

	if related := relatedTerms(t.Related); related != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Related",
			Value: related,
		})
	}
	if links := heroLinks(t.Preview.Politics, DigestHeroLinks); links != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Headlines",
			Value: links,
		})
	}
	if len(t.Preview.Politics) > 0 && t.Preview.Politics[0].Image != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: *t.Preview.Politics[0].Image}
	}
	return embed
}

func heroLinks(list []topics.Article, limit int) string {
	var b strings.Builder
	for i, a := range list {
		if i >= limit {
			break
		}
		if a.URL != "" {
			fmt.Fprintf(&b, "• [%s](%s) - %s\n", a.Title, a.URL, a.SiteName)
		} else {
			fmt.Fprintf(&b, "• %s - %s\n", a.Title, a.SiteName)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func relatedTerms(list []topics.Tag) string {
	terms := make([]string, 0, len(list))
	for _, t := range list {
		terms = append(terms, t.Term)
	}
	return strings.Join(terms, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
