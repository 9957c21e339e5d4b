package extractor

import (
	"regexp"

	"github.com/sandevgo/ctxbroker/internal/core"
)

// rule pairs a label with its matcher. Tables are slices, not maps: the first
// matching rule wins, so iteration order is part of the behaviour.
type rule struct {
	label   string
	pattern *regexp.Regexp
}

// Intent and topic rules run against the lowercased message.
var intentRules = []rule{
	{core.IntentQuestion, regexp.MustCompile(`\b(?:who|what|when|where|why|how|is|are|can|could|would|will|should)\b.+\?`)},
	{core.IntentGreeting, regexp.MustCompile(`\b(?:hello|hi|hey|greetings|good\s+(?:morning|afternoon|evening))\b`)},
	{core.IntentFarewell, regexp.MustCompile(`\b(?:goodbye|bye|see\s+you|talk\s+to\s+you\s+later|until\s+next\s+time)\b`)},
	{core.IntentRequest, regexp.MustCompile(`\b(?:please|kindly|can\s+you|could\s+you|would\s+you|will\s+you)\b`)},
	{core.IntentCommand, regexp.MustCompile(`\b(?:find|get|show|tell|send|create|make|do|call|open|close|start|stop|change)\b`)},
	{core.IntentOpinion, regexp.MustCompile(`\b(?:think|believe|feel|opinion|view|stance|perspective)\b`)},
	{core.IntentPreference, regexp.MustCompile(`\b(?:prefer|rather|like\s+better|favorite|wish|want|desire)\b`)},
	{core.IntentClarification, regexp.MustCompile(`\b(?:mean|understand|explain|clarify|elaborate|specify)\b`)},
	{core.IntentAgreement, regexp.MustCompile(`\b(?:yes|agree|correct|right|exactly|precisely|absolutely|indeed)\b`)},
	{core.IntentDisagreement, regexp.MustCompile(`\b(?:no|disagree|incorrect|wrong|false|mistaken|inaccurate)\b`)},
	{core.IntentGratitude, regexp.MustCompile(`\b(?:thanks|thank\s+you|appreciate|grateful)\b`)},
	{core.IntentApology, regexp.MustCompile(`\b(?:sorry|apologize|regret|forgive)\b`)},
}

var topicRules = []rule{
	{"weather", regexp.MustCompile(`\b(?:weather|temperature|forecast|rain|snow|sunny|cloudy|storm|humidity|climate)\b`)},
	{"news", regexp.MustCompile(`\b(?:news|headline|article|journalist|reporter|media|press|coverage|story|event)\b`)},
	{"technology", regexp.MustCompile(`\b(?:tech|technology|computer|software|hardware|app|application|device|gadget|program|code)\b`)},
	{"finance", regexp.MustCompile(`\b(?:money|finance|financial|invest|investment|market|stock|fund|banking|loan|credit|debit|payment)\b`)},
	{"travel", regexp.MustCompile(`\b(?:travel|trip|journey|flight|hotel|vacation|holiday|destination|tourist|tourism|visit)\b`)},
	{"food", regexp.MustCompile(`\b(?:food|meal|recipe|cook|dish|restaurant|eat|dinner|lunch|breakfast|ingredient|cuisine)\b`)},
	{"health", regexp.MustCompile(`\b(?:health|medical|doctor|hospital|symptom|disease|condition|treatment|therapy|medicine|drug)\b`)},
	{"entertainment", regexp.MustCompile(`\b(?:movie|film|show|series|actor|actress|director|music|song|artist|band|concert|festival)\b`)},
	{"sports", regexp.MustCompile(`\b(?:sport|game|team|player|athlete|tournament|championship|match|competition|league|score)\b`)},
	{"education", regexp.MustCompile(`\b(?:school|university|college|course|class|study|student|teacher|professor|degree|education|learn|teach)\b`)},
}

// Entity rules run against the original-cased message. Every rule
// contributes; there is no first-match cut-off here.
var entityRules = []rule{
	{"date", regexp.MustCompile(`\b(?:\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{2,4}|tomorrow|yesterday|today|next\s+(?:week|month|year)|last\s+(?:week|month|year))\b`)},
	{"time", regexp.MustCompile(`\b(?:\d{1,2}:\d{2}(?::\d{2})?(?:\s*[ap]\.?m\.?)?|noon|midnight|morning|afternoon|evening|night)\b`)},
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)},
	{"phone", regexp.MustCompile(`\b(?:\+\d{1,2}\s)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}\b`)},
	{"url", regexp.MustCompile(`\b(?:https?://)?(?:www\.)?[a-zA-Z0-9-]+(?:\.[a-zA-Z]{2,})+(?:/[^\s]*)?\b`)},
	{"money", regexp.MustCompile(`\b(?:\$|€|£|¥)?(?:\d+,)*\d+(?:\.\d+)?(?:\s*(?:dollars|euros|pounds|yen))?\b`)},
	{"percentage", regexp.MustCompile(`\b\d+(?:\.\d+)?\s*%\b`)},
	{"person", regexp.MustCompile(`\b(?:[A-Z][a-z]+\s+[A-Z][a-z]+)\b`)},
	{"location", regexp.MustCompile(`\b(?:[A-Z][a-z]+(?:,\s+[A-Z][a-z]+)?)\b`)},
	{"organization", regexp.MustCompile(`\b(?:[A-Z][a-z]*(?:\s+[A-Z][a-z]*){1,5}(?:\s+(?:Inc|LLC|Ltd|Co|Corp|Corporation|Company)))\b`)},
}

func firstMatch(rules []rule, text string) (string, bool) {
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.label, true
		}
	}
	return "", false
}
