package failover

import (
	"hash/fnv"
	"strings"

	"github.com/aditya493/linkedin-devops-automation/llm"
)

// Curated fallback text per task. Selection is a pure function of the prompt
// so dry-run and live produce identical output for identical inputs.

var fallbackReplies = []string{
	"Thanks for sharing your thoughts! What's been your experience with this approach?",
	"Great point! Similar patterns show up in a lot of production environments. Would love to hear more about your setup.",
	"Appreciate the feedback! This is exactly the kind of discussion that helps everyone learn.",
	"Thanks for the insight! Have you tried combining this with other DevOps practices?",
	"Really appreciate you taking the time to comment! Let's keep the discussion going.",
}

var fallbackPersonas = []string{
	"Enterprise-scale systems reveal deep insights from the trenches. Here's what matters.",
	"Production experience shows which patterns hold up under pressure. Worth understanding.",
	"Curating the signals that matter in DevOps. Let's break this down.",
}

var fallbackGenerated = []string{
	"Practical signal for building reliable systems.",
	"Empowers teams to deliver with confidence.",
	"Drives operational excellence and learning.",
}

var fallbackSummaries = []string{
	"Key development worth tracking for DevOps and platform teams.",
	"A practical update with direct impact on day-to-day operations.",
	"Notable industry movement for teams running production systems.",
}

// StaticFallback returns the curated fallback for a task. It is total: every
// task, including unknown ones, maps to non-empty text.
func StaticFallback(task llm.Task, prompt string) string {
	var pool []string
	switch task {
	case llm.TaskReply:
		pool = fallbackReplies
	case llm.TaskPersona:
		pool = fallbackPersonas
	case llm.TaskSummarize:
		pool = fallbackSummaries
	default:
		pool = fallbackGenerated
	}
	return pool[pickIndex(prompt, len(pool))]
}

func pickIndex(seed string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.TrimSpace(seed)))
	return int(h.Sum32() % uint32(n))
}
