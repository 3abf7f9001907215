package constants

// Stage is a step of the upload pipeline. Stages only move forward.
type Stage string

const (
	StageReceived   Stage = "RECEIVED"
	StageClassified Stage = "CLASSIFIED"
	StageExtracted  Stage = "EXTRACTED"
	StageNormalized Stage = "NORMALIZED" // AI path only
	StageCleaned    Stage = "CLEANED"
	StageResponded  Stage = "RESPONDED"
)

// Strategy is the extraction strategy chosen for an upload.
type Strategy string

const (
	StrategyTabular     Strategy = "tabular"
	StrategyAIDelegated Strategy = "ai-delegated"
)
