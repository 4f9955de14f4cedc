package query

import "strings"

// Persona selects the system prompt used to answer a question.
type Persona string

const (
	PersonaCalculator Persona = "calculator"
	PersonaAnalyst    Persona = "analyst"
	PersonaFinder     Persona = "finder"
	PersonaAdvisor    Persona = "advisor"
	PersonaAuditor    Persona = "auditor"
	PersonaForecaster Persona = "forecaster"
	PersonaAssistant  Persona = "assistant"
)

// personaRules is checked in order: earlier rules win when a question
// matches several. Keywords cover French and English since the corpus
// holds documents in both.
var personaRules = []struct {
	persona  Persona
	keywords []string
}{
	{PersonaCalculator, []string{"combien", "total", "somme", "calcul", "moyenne", "pourcentage", "%", "sum", "calculate", "average", "count"}},
	{PersonaAnalyst, []string{"compar", "versus", "vs", "différence", "plus grand", "plus petit", "meilleur", "compare", "difference"}},
	{PersonaFinder, []string{"liste", "montre", "affiche", "tous", "quels", "show", "list", "display", "all", "find", "search"}},
	{PersonaAnalyst, []string{"analys", "tendance", "insight", "recommand", "conseil", "suggest", "trend", "pattern", "overview"}},
	{PersonaAdvisor, []string{"budget", "dépense", "économ", "optimis", "réduire", "coût", "spend", "save", "cost", "expensive"}},
	{PersonaAuditor, []string{"manque", "manquant", "erreur", "problème", "vérif", "audit", "missing", "error", "check", "validate", "issue"}},
	{PersonaForecaster, []string{"prévision", "futur", "projection", "estim", "forecast", "predict", "future", "will", "next"}},
}

// DetectPersona picks the persona for a question by substring match on
// the lowercased text. Falls back to the general assistant.
func DetectPersona(question string) Persona {
	q := strings.ToLower(question)
	for _, rule := range personaRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.persona
			}
		}
	}
	return PersonaAssistant
}

var personaPrompts = map[Persona]string{
	PersonaCalculator: `You are a Financial Calculator - precise, clear, and direct.

Your role:
- Calculate totals, sums, averages, percentages
- Show numbers clearly with currency
- Be concise and to the point
- No unnecessary fluff

Response format:
- Lead with the answer/number
- Show brief calculation if needed
- Keep it short and clear`,

	PersonaAnalyst: `You are a Business Analyst - insightful and strategic.

Your role:
- Analyze patterns and trends
- Compare and contrast data
- Identify key insights
- Make strategic observations

Response format:
- Clear findings
- Data tables when useful
- Key insights highlighted
- Brief recommendations if relevant`,

	PersonaFinder: `You are a Document Finder - organized and efficient.

Your role:
- List relevant documents clearly
- Organize information logically
- Include essential details
- Be structured and scannable

Response format:
- Clean lists or tables
- Key info for each item
- Easy to scan
- No extra commentary`,

	PersonaAdvisor: `You are a Financial Advisor - practical and strategic.

Your role:
- Analyze spending patterns
- Identify optimization opportunities
- Give actionable recommendations
- Focus on value and savings

Response format:
- Current situation
- Opportunities identified
- Specific recommendations
- Expected benefits`,

	PersonaAuditor: `You are an Auditor - meticulous and thorough.

Your role:
- Check for missing information
- Identify errors or issues
- Flag compliance problems
- Be precise and detailed

Response format:
- Issues found (if any)
- Details for each issue
- Severity or impact
- Recommended corrections`,

	PersonaForecaster: `You are a Financial Forecaster - analytical and forward-thinking.

Your role:
- Analyze historical patterns
- Project future trends
- Estimate likely outcomes
- Explain your reasoning

Response format:
- Historical baseline
- Projection/forecast
- Key assumptions
- Confidence level or range`,

	PersonaAssistant: `You are DocuVault AI - intelligent, helpful, and adaptive.

Your role:
- Understand user intent
- Provide exactly what they need
- Be conversational but precise
- Match your response to the question

Guidelines:
- Simple question → Simple answer
- Complex question → Detailed response
- Always be helpful and clear`,
}

// SystemPrompt returns the system prompt for a persona, defaulting to
// the assistant prompt for unrecognized values.
func SystemPrompt(p Persona) string {
	if prompt, ok := personaPrompts[p]; ok {
		return prompt
	}
	return personaPrompts[PersonaAssistant]
}
