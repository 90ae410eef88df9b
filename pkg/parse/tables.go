package parse

import (
	"regexp"

	"stonktip/pkg/tip"
)

// keywordEntry maps a value to the substrings that identify it.
type keywordEntry[T any] struct {
	value    T
	keywords []string
}

// capturePattern extracts one group. Digit classes are \p{Nd} so full-width and other
// decimal digits match as well as ASCII. stripSpaces removes blanks from the capture before conversion.
type capturePattern struct {
	locale      string
	re          *regexp.Regexp
	group       int
	stripSpaces bool
}

// Table order is significant: the first hit wins.
var npcTable = []keywordEntry[tip.HeroTown]{
	{tip.Celine, []string{"Celine", "Atelier", "席琳", "谢琳", "工作室", "셀린", "아뜰리에"}},
	{tip.Chocolat, []string{"Chocolat", "Bakery", "修可兒拉", "巧克莉", "面包店", "쇼콜라", "베이커리"}},
	{tip.Fergus, []string{"Fergus", "Anvil", "普勾斯", "普格斯", "铁匠", "푸거스"}},
	{tip.Lednas, []string{"Lednas", "Association", "青年會", "蕾德那斯", "英雄城青年组织", "레드나스", "청년회"}},
	{tip.Lenny, []string{"Lenny", "Orchard", "果樹園", "蕾妮", "果树园", "레니", "과수원"}},
}

var currentTurnPatterns = []capturePattern{
	{locale: "any", re: regexp.MustCompile(`\A(. )?TURN (\p{Nd}+)`), group: 2},
}

var targetTurnPatterns = []capturePattern{
	{locale: "en", re: regexp.MustCompile(`Turn (\p{Nd}+)`), group: 1},
	{locale: "zh-TW", re: regexp.MustCompile(`(\p{Nd}+)回合`), group: 1},
	{locale: "zh-CN", re: regexp.MustCompile(`(\p{Nd}+)回合`), group: 1},
	{locale: "ko", re: regexp.MustCompile(`(\p{Nd}+)턴의`), group: 1},
}

var noChangeTable = []keywordEntry[string]{
	{"en", []string{"remain stable"}},
	{"zh-TW", []string{"會跟現在一樣"}},
	{"zh-CN", []string{"维持不变"}},
	{"ko", []string{"변동없음"}},
}

// Increase then decrease for each locale. Decrease captures include the minus sign.
var priceChangePatterns = []capturePattern{
	{locale: "en", re: regexp.MustCompile(`rise by approximately (\p{Nd}+)`), group: 1},
	{locale: "en", re: regexp.MustCompile(`fall by approximately (-\p{Nd}+)`), group: 1},
	{locale: "zh-TW", re: regexp.MustCompile(`上升約(\p{Nd}+)。`), group: 1},
	{locale: "zh-TW", re: regexp.MustCompile(`下滑約(-\p{Nd}+)。`), group: 1},
	{locale: "zh-CN", re: regexp.MustCompile(`上升约(\p{Nd}+)。`), group: 1},
	{locale: "zh-CN", re: regexp.MustCompile(`下降约(-\p{Nd}+)。`), group: 1},
	{locale: "ko", re: regexp.MustCompile(`약 (\p{Nd}+) 상승`), group: 1},
	{locale: "ko", re: regexp.MustCompile(`약 (-( )?\p{Nd}+) 하락`), group: 1, stripSpaces: true},
}
