package collection

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent is a status update from a long-running operation.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}
