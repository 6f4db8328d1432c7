package topics

import (
	"errors"
	"sort"
)

type scanState int

const (
	stateScanning scanState = iota
	stateAccepted
	stateExhausted
)

// RankTags sorts tags by SourceCount, highest first. Ties keep input order.
func RankTags(tags []Tag) []Tag {
	ranked := append([]Tag{}, tags...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SourceCount > ranked[j].SourceCount
	})
	return ranked
}

// BuildTopTopics picks topicsToGet mutually distinct topics from a tag list
// ranked by SourceCount. It never returns fewer topics than requested: if the
// list or the attempt bound runs out first it fails with ErrInsufficientTopics.
func (b *Builder) BuildTopTopics(tags []Tag, pool *ArticlePool, topicsToGet int) ([]Topic, error) {
	selected := make([]Topic, 0, topicsToGet)
	cursor := 0

	for len(selected) < topicsToGet {
		topic, next, err := b.nextTopic(tags, pool, selected, cursor)
		if err != nil {
			if errors.Is(err, ErrInsufficientTopics) {
				return nil, insufficientTopics(len(selected), topicsToGet, next)
			}
			return nil, err
		}
		selected = append(selected, topic)
		cursor = next
	}

	return selected, nil
}

// nextTopic scans forward from cursor until one candidate is accepted and
// returns the topic plus the position the next scan starts from.
func (b *Builder) nextTopic(tags []Tag, pool *ArticlePool, selected []Topic, cursor int) (Topic, int, error) {
	state := stateScanning
	attempts := 0
	var topic Topic

	for state == stateScanning {
		if cursor >= len(tags) || attempts >= b.opts.MaxAttempts {
			state = stateExhausted
			continue
		}

		candidate := tags[cursor]
		if reason := b.skipReason(candidate, selected); reason != "" {
			b.opts.Logger.Debug("skipping tag %q at %d: %s", candidate.Term, cursor, reason)
			attempts++
			cursor++
			continue
		}

		built, err := b.BuildTopic(candidate, tags, pool)
		if errors.Is(err, ErrNoDistinctRelatedTerm) {
			b.opts.Logger.Debug("skipping tag %q at %d: %v", candidate.Term, cursor, err)
			attempts++
			cursor++
			continue
		}
		if err != nil {
			return Topic{}, cursor, err
		}

		topic = built
		state = stateAccepted
	}

	if state == stateExhausted {
		return Topic{}, cursor, ErrInsufficientTopics
	}
	return topic, cursor + 1, nil
}

func (b *Builder) skipReason(candidate Tag, selected []Topic) string {
	if candidate.SourceCount < b.opts.MinSourceCount {
		return "below popularity floor"
	}
	for _, t := range selected {
		if lexicallyRelated(t.Main.Term, candidate.Term) {
			return "overlaps topic " + t.Main.Term
		}
		for _, r := range t.Related {
			if r.Term == candidate.Term {
				return "related to topic " + t.Main.Term
			}
		}
	}
	return ""
}
