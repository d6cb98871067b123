package persona

// Built-in persona pools keyed by post format, used when neither the AI
// rung nor the operator table yields a line.
var builtinPersonas = map[string][]string{
	"digest": {
		"Curating the infrastructure stories practitioners actually need. Here's the signal.",
		"High-signal reads for platform teams, filtered from the noise. Worth your time.",
		"The week in DevOps, compressed into what moves the needle.",
	},
	"deep_dive": {
		"Going past the headline into the engineering underneath. This matters.",
		"Real systems reveal their lessons in the details. Let's break this down.",
		"One story, properly unpacked for people who run production.",
	},
	"quick_tip": {
		"Small practices compound into reliable platforms. Here's one.",
		"Field-tested shortcuts from teams running things at scale.",
	},
	"case_study": {
		"Production incidents teach what documentation never will. Worth studying.",
		"Engineering postmortems hold the industry's most honest lessons.",
	},
	"hot_take": {
		"Conventional wisdom in infrastructure deserves regular stress-testing.",
		"Some industry defaults survive only because nobody questions them.",
	},
	"lessons": {
		"Hard-won operational lessons, shared so others skip the pain.",
		"Patterns repeat across every platform team. These keep showing up.",
	},
}
