package compose

// Phrase pools rotated per run. Keeping them in one place makes operator
// review of outgoing copy easy.

var digestHooks = []string{
	"🚀 DevOps signal, minus the noise",
	"☕ Your infrastructure reading list",
	"📡 What moved in platform engineering today",
	"🔧 Fresh from the DevOps wire",
	"🧭 Navigating this week's infra news",
}

var deepDiveHooks = []string{
	"🔍 Going deeper on one story today",
	"🧠 One topic, properly unpacked",
	"📖 Long-read territory, short-post format",
}

var sectionHeaders = []string{
	"Today's high-signal reads:",
	"Worth your time:",
	"Key developments:",
	"What stands out:",
	"Industry pulse:",
}

var digestCTAs = []string{
	"Which of these lands closest to your stack? 👇",
	"Save this for your next planning session.",
	"What did I miss? Drop a link below.",
	"Follow for a steady stream of infra signal.",
}

var discussionCTAs = []string{
	"How are you handling this in your org?",
	"Curious what others are seeing. Comments open.",
	"Been through this yourself? Share the war story.",
	"What would you do differently?",
}

var hotTakeLines = []string{
	"Most teams adopt the tool before they adopt the discipline.",
	"If your runbook needs a runbook, the problem is upstream.",
	"Dashboards do not fix culture.",
	"The hard part was never the YAML.",
}

var lessonLines = []string{
	"Automate the boring path before the exciting one.",
	"Alert on symptoms users feel, not on every metric you can scrape.",
	"Rollback speed matters more than deploy speed.",
	"Staging that drifts from prod is worse than no staging.",
	"Postmortems without action items are just storytelling.",
	"Capacity planning starts the day you ship, not the day you page.",
}
