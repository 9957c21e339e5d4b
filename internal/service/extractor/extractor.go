// Package extractor classifies a free-text message into topic, intent,
// entities and keywords using fixed, ordered rule tables.
package extractor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

const (
	baseConfidence     = 0.3
	intentBonus        = 0.1
	topicBonus         = 0.2
	perEntityBonus     = 0.05
	maxEntityBonus     = 0.2
	perKeywordBonus    = 0.01
	maxKeywordBonus    = 0.2
	enhancementBonus   = 0.2
	maxConfidenceValue = 1.0
)

type Extractor struct {
	lemmatizer Lemmatizer
}

func New(lemmatizer Lemmatizer) *Extractor {
	if lemmatizer == nil {
		lemmatizer = identityLemmatizer{}
	}
	return &Extractor{lemmatizer: lemmatizer}
}

// NewDefault returns an Extractor backed by the English dictionary lemmatizer.
func NewDefault() *Extractor {
	return New(DefaultLemmatizer())
}

// Extract never fails. When enhance is set and an enhancer is given, the
// enhancer is consulted; its failure leaves the rule-based result untouched.
func (e *Extractor) Extract(ctx context.Context, message string, enhance bool, enhancer core.Enhancer) core.ContextInfo {
	info := e.extract(ctx, message)
	if enhance && enhancer != nil {
		return enhanceInfo(ctx, info, enhancer)
	}
	return info
}

func (e *Extractor) extract(ctx context.Context, message string) (info core.ContextInfo) {
	message = strings.TrimSpace(message)

	defer func() {
		if r := recover(); r != nil {
			log.FromCtx(ctx).Error().Interface("panic", r).Msg("context extraction degraded to defaults")
			info = core.ContextInfo{
				Entities:      []string{},
				Keywords:      []string{},
				Intent:        core.IntentStatement,
				Confidence:    baseConfidence,
				OriginalQuery: message,
			}
		}
	}()

	lower := strings.ToLower(message)

	intent, ok := firstMatch(intentRules, lower)
	if !ok {
		intent = core.IntentStatement
	}
	topic, _ := firstMatch(topicRules, lower)
	entities := extractEntities(message)
	keywords := extractKeywords(message, e.lemmatizer)

	return core.ContextInfo{
		Topic:         topic,
		Entities:      entities,
		Keywords:      keywords,
		Intent:        intent,
		Confidence:    confidence(intent, topic, len(entities), len(keywords)),
		OriginalQuery: message,
	}
}

// extractEntities collects matches from every entity rule, de-duplicated by
// value, in rule order then match order.
func extractEntities(message string) []string {
	entities := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range entityRules {
		for _, match := range r.pattern.FindAllString(message, -1) {
			if match == "" {
				continue
			}
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			entities = append(entities, match)
		}
	}
	return entities
}

func confidence(intent, topic string, entities, keywords int) float64 {
	c := baseConfidence
	if intent != "" && intent != core.IntentStatement {
		c += intentBonus
	}
	if topic != "" {
		c += topicBonus
	}
	c += math.Min(maxEntityBonus, perEntityBonus*float64(entities))
	c += math.Min(maxKeywordBonus, perKeywordBonus*float64(keywords))
	return math.Min(c, maxConfidenceValue)
}

func enhanceInfo(ctx context.Context, info core.ContextInfo, enhancer core.Enhancer) (out core.ContextInfo) {
	logger := log.FromCtx(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Interface("panic", r).Msg("LLM enhancement failed")
			out = info
		}
	}()

	if _, err := enhancer.Enhance(ctx, AnalysisPrompt(info)); err != nil {
		logger.Warn().Err(err).Msg("LLM enhancement failed")
		return info
	}

	// The enhancer's answer is not interpreted yet; only confidence moves.
	enhanced := info.Clone()
	enhanced.Confidence = math.Min(info.Confidence+enhancementBonus, maxConfidenceValue)
	enhanced.LLMEnhanced = true
	return enhanced
}

// AnalysisPrompt renders the current extraction as instructions for an LLM.
func AnalysisPrompt(info core.ContextInfo) string {
	topic := info.Topic
	if topic == "" {
		topic = "Unknown"
	}
	entities := "None detected"
	if len(info.Entities) > 0 {
		entities = strings.Join(info.Entities, ", ")
	}

	return fmt.Sprintf(`Extract contextual information from this user message:
"%s"

Current analysis:
- Topic: %s
- Intent: %s
- Entities: %s

Please refine this analysis and provide:
1. A more accurate topic
2. The user's primary intent
3. Key entities mentioned
4. Any additional contextual information

Format your response as a JSON object with these fields.`, info.OriginalQuery, topic, info.Intent, entities)
}
