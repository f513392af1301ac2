// Package thinking expands a raw user query into a structured
// reasoning prompt before it goes to the model. Pure string templating.
package thinking

import "strings"

// Mode selects which reasoning template wraps the query.
type Mode string

const (
	ModeNormal              Mode = "normal"
	ModeDeepAnalysis        Mode = "deep_analysis"
	ModeResearchSynthesis   Mode = "research_synthesis"
	ModeStrategicThinking   Mode = "strategic_thinking"
	ModeCreativeExploration Mode = "creative_exploration"
)

const basePrompt = `<thinking>
I need to think through this query carefully and systematically. Let me break this down step by step.

First, let me understand what the user is asking:
{query}

Let me analyze the key components and consider multiple angles:
1. What are the main aspects I need to address?
2. Are there any assumptions I should question?
3. What additional context or information might be relevant?
4. How can I provide the most helpful and comprehensive response?

{mode_specific_thinking}

Let me also consider potential counterarguments or alternative perspectives to ensure I'm being thorough and balanced in my analysis.
</thinking>

{response_instruction}`

type modeTemplate struct {
	thinking    string
	instruction string
}

var modeTemplates = map[Mode]modeTemplate{
	ModeDeepAnalysis: {
		thinking: `
For this deep analysis, I should:
- Examine the underlying principles and mechanisms
- Consider historical context and precedents
- Analyze cause-and-effect relationships
- Look for patterns and connections
- Evaluate different theoretical frameworks
- Consider long-term implications and consequences
`,
		instruction: "Provide a comprehensive, multi-layered analysis that examines the topic from multiple angles, including underlying principles, historical context, and broader implications.",
	},
	ModeResearchSynthesis: {
		thinking: `
For this research synthesis, I need to:
- Gather information from multiple reliable sources
- Compare and contrast different viewpoints
- Identify consensus and areas of disagreement
- Evaluate the quality and credibility of sources
- Synthesize findings into coherent insights
- Note any gaps in current knowledge

Research context available: {research_context}
`,
		instruction: "Conduct thorough research using available sources, synthesize findings from multiple perspectives, and provide a well-supported analysis with proper attribution.",
	},
	ModeStrategicThinking: {
		thinking: `
For strategic thinking, I should:
- Define the problem or opportunity clearly
- Analyze the current situation and context
- Identify key stakeholders and their interests
- Consider various strategic options and scenarios
- Evaluate risks, benefits, and trade-offs
- Think about implementation challenges
- Consider short-term and long-term implications
`,
		instruction: "Think strategically about this issue, considering multiple scenarios, stakeholder perspectives, implementation challenges, and both short-term and long-term implications.",
	},
	ModeCreativeExploration: {
		thinking: `
For creative exploration, I should:
- Challenge conventional assumptions
- Look for unconventional connections and analogies
- Consider "what if" scenarios
- Think about the problem from different perspectives
- Explore interdisciplinary approaches
- Generate multiple innovative solutions
- Build on ideas to create new possibilities
`,
		instruction: "Explore this topic creatively, challenging assumptions, making unexpected connections, and generating innovative ideas and solutions.",
	},
}

// Compose builds the extended-thinking prompt for the given query.
// Unrecognized modes fall back to deep analysis; Compose never fails.
// Only research_synthesis interpolates the research context.
func Compose(query string, mode Mode, researchContext string) string {
	tmpl, ok := modeTemplates[mode]
	if !ok {
		tmpl = modeTemplates[ModeDeepAnalysis]
	}

	modeThinking := strings.ReplaceAll(tmpl.thinking, "{research_context}", researchContext)

	// Query is substituted last so user text can't hijack a placeholder.
	out := basePrompt
	out = strings.ReplaceAll(out, "{mode_specific_thinking}", modeThinking)
	out = strings.ReplaceAll(out, "{response_instruction}", tmpl.instruction)
	out = strings.ReplaceAll(out, "{query}", query)
	return out
}
