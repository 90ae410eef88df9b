package tiperr

import (
	"errors"
	"fmt"
)

// Kind classifies which pipeline stage failed.
type Kind string

const (
	KindRegionDetection Kind = "REGION_DETECTION_FAILED"
	KindOCRService      Kind = "OCR_SERVICE_FAILED"
	KindParsing         Kind = "PARSING_FAILED"
)

// Stage names the parser pass that could not match. Empty for non-parsing errors.
type Stage string

const (
	StageNone        Stage = ""
	StageNPC         Stage = "npc"
	StageCurrentTurn Stage = "current_turn"
	StageTargetTurn  Stage = "target_turn"
	StagePriceChange Stage = "price_change"
)

// Error is the structured failure raised inside the pipeline and caught by the reader.
type Error struct {
	Kind    Kind
	Stage   Stage
	Message string
	Input   string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Stage != StageNone {
		msg = fmt.Sprintf("%s [%s]: %s", e.Kind, e.Stage, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Factory functions

func NewRegionDetectionError(msg string) *Error {
	return &Error{Kind: KindRegionDetection, Message: msg}
}

func NewOCRServiceError(msg string, cause error) *Error {
	return &Error{Kind: KindOCRService, Message: msg, Cause: cause}
}

// NewParsingError echoes the full text so failures can be matched to the screenshot in logs.
func NewParsingError(stage Stage, text string) *Error {
	return &Error{
		Kind:    KindParsing,
		Stage:   stage,
		Message: fmt.Sprintf("Cannot find %s in: %s", stage, text),
		Input:   text,
	}
}

// ToMap flattens the error for structured logging.
func (e *Error) ToMap() map[string]interface{} {
	out := map[string]interface{}{
		"kind":    string(e.Kind),
		"message": e.Message,
	}
	if e.Stage != StageNone {
		out["stage"] = string(e.Stage)
	}
	if e.Input != "" {
		out["input"] = e.Input
	}
	if e.Cause != nil {
		out["cause"] = e.Cause.Error()
	}
	return out
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}

// StageOf returns the parsing stage carried by err, if any.
func StageOf(err error) Stage {
	var te *Error
	if errors.As(err, &te) {
		return te.Stage
	}
	return StageNone
}
