package lifecycle

import "github.com/bnrubin/discord-logbot/internal/domain"

// Classify decides what an edit event means. It is a pure function of the two
// snapshots; rules are evaluated in order and the first match wins.
func Classify(rules domain.LifecycleRules, before, after domain.MessageSnapshot) domain.Classification {
	if !fromObservedBot(rules, after) {
		return domain.ClassIgnore
	}

	if isCompletion(rules, after.Embed) {
		if after.Embed.ImageWidth == rules.PlaceholderWidth {
			return domain.ClassFiltered
		}
		return domain.ClassComplete
	}

	if before.HasEmbed() && !after.HasEmbed() {
		return domain.ClassRetract
	}

	return domain.ClassNoOp
}

func fromObservedBot(rules domain.LifecycleRules, msg domain.MessageSnapshot) bool {
	if rules.ObservedBotID != "" {
		return msg.AuthorID == rules.ObservedBotID
	}
	return msg.AuthorIsBot
}

func isCompletion(rules domain.LifecycleRules, embed *domain.Embed) bool {
	return embed != nil && embed.Title == rules.CompletionTitle
}
