// Package parse turns normalized dialogue text into a validated tip.
package parse

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"stonktip/pkg/tip"
	"stonktip/pkg/tiperr"
)

// Parse runs the npc, current turn, target turn and price change passes in that order
// and reports the first one that fails.
func Parse(text string) (tip.Tip, error) {
	town, err := parseNPC(text)
	if err != nil {
		return tip.Failed(), err
	}
	current, err := parseCurrentTurn(text)
	if err != nil {
		return tip.Failed(), err
	}
	target, err := parseTargetTurn(text)
	if err != nil {
		return tip.Failed(), err
	}
	change, err := parsePriceChange(text)
	if err != nil {
		return tip.Failed(), err
	}
	return tip.New(town, current, target, change), nil
}

func parseNPC(text string) (tip.HeroTown, error) {
	town, ok := firstKeyword(text, npcTable)
	if !ok {
		return tip.Unknown, tiperr.NewParsingError(tiperr.StageNPC, text)
	}
	return town, nil
}

func parseCurrentTurn(text string) (int, error) {
	return captureInt(text, currentTurnPatterns, tiperr.StageCurrentTurn)
}

func parseTargetTurn(text string) (int, error) {
	return captureInt(text, targetTurnPatterns, tiperr.StageTargetTurn)
}

func parsePriceChange(text string) (int, error) {
	if _, ok := firstKeyword(text, noChangeTable); ok {
		return 0, nil
	}
	return captureInt(text, priceChangePatterns, tiperr.StagePriceChange)
}

// firstKeyword scans entries in order and returns the value of the first keyword found in text.
func firstKeyword[T any](text string, table []keywordEntry[T]) (T, bool) {
	for _, e := range table {
		for _, kw := range e.keywords {
			if strings.Contains(text, kw) {
				return e.value, true
			}
		}
	}
	var zero T
	return zero, false
}

// firstCapture returns the configured group of the first pattern that matches.
func firstCapture(text string, patterns []capturePattern) (string, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil || p.group >= len(m) {
			continue
		}
		v := m[p.group]
		if p.stripSpaces {
			v = strings.ReplaceAll(v, " ", "")
		}
		return v, true
	}
	return "", false
}

// captureInt fails the stage on no match and on digits that do not fit an int.
func captureInt(text string, patterns []capturePattern, stage tiperr.Stage) (int, error) {
	raw, ok := firstCapture(text, patterns)
	if !ok {
		return 0, tiperr.NewParsingError(stage, text)
	}
	n, err := strconv.Atoi(foldDigits(raw))
	if err != nil {
		return 0, tiperr.NewParsingError(stage, text)
	}
	return n, nil
}

// foldDigits rewrites every decimal digit rune to its ASCII form.
func foldDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf || !unicode.IsDigit(r) {
			return r
		}
		return '0' + rune(digitValue(r))
	}, s)
}

// digitValue relies on Nd digits being allocated in runs of ten starting at zero.
func digitValue(r rune) int {
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return int(r-start) % 10
}
