package domain

// Classification is the lifecycle manager's verdict for one edit event.
type Classification string

const (
	ClassIgnore   Classification = "ignore"
	ClassFiltered Classification = "filtered"
	ClassComplete Classification = "complete"
	ClassRetract  Classification = "retract"
	ClassNoOp     Classification = "noop"
)

// LifecycleRules holds the knobs the classifier needs.
type LifecycleRules struct {
	// ObservedBotID restricts handling to one bot account. Empty accepts any bot author.
	ObservedBotID string
	// CompletionTitle is the embed title the bot uses once a generation finished.
	CompletionTitle string
	// PlaceholderWidth is the image width of the bot's withheld-content placeholder.
	PlaceholderWidth int
}

// Outcome reports what HandleEdit did for an event.
type Outcome struct {
	Classification Classification
	// Record is the inserted record for ClassComplete.
	Record *InteractionRecord
	// Applied is false when the store reported nothing to change:
	// a duplicate insert or a soft delete with no matching record.
	Applied bool
}
