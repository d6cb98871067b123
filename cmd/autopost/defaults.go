package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// State files live under one directory; each is an independent
	// whole-document JSON store with its own lock.
	viper.SetDefault("state_dir", "~/.autopost")

	// LinkedIn platform
	viper.SetDefault("linkedin.access_token", "")
	viper.SetDefault("linkedin.author_urn", "")
	viper.SetDefault("linkedin.base_url", "")
	viper.SetDefault("linkedin.timeout", 30*time.Second)

	// AI backends, tried in order.
	viper.SetDefault("providers.order", []string{"groq", "gemini", "openrouter", "huggingface"})
	viper.SetDefault("providers.timeout", 15*time.Second)
	viper.SetDefault("providers.groq.api_key", "")
	viper.SetDefault("providers.groq.model", "")
	viper.SetDefault("providers.gemini.api_key", "")
	viper.SetDefault("providers.gemini.model", "")
	viper.SetDefault("providers.openrouter.api_key", "")
	viper.SetDefault("providers.openrouter.model", "")
	viper.SetDefault("providers.huggingface.api_key", "")
	viper.SetDefault("providers.huggingface.model", "")

	// Rate gate
	viper.SetDefault("gate.min_post_interval", 4*time.Hour)
	viper.SetDefault("gate.max_posts_per_day", 3)
	viper.SetDefault("gate.cooldown_on_error", 30*time.Minute)
	viper.SetDefault("gate.kill_switch", false)

	// Dedup
	viper.SetDefault("dedup.window_days", 7)

	// Feeds and candidate filtering
	viper.SetDefault("feeds.urls", defaultFeedURLs)
	viper.SetDefault("feeds.per_feed_limit", 30)
	viper.SetDefault("feeds.timeout", 15*time.Second)
	viper.SetDefault("filter.include", defaultIncludeKeywords)
	viper.SetDefault("filter.exclude", defaultExcludeKeywords)
	viper.SetDefault("filter.min_age_hours", 0)
	viper.SetDefault("filter.max_age_hours", 72)

	// Composition
	viper.SetDefault("compose.max_chars", 1300)
	viper.SetDefault("compose.max_hashtags", 5)
	viper.SetDefault("compose.hashtags", []string{})
	viper.SetDefault("compose.formats", []string{})
	viper.SetDefault("compose.force_format", "")

	// Persona
	viper.SetDefault("persona.table", "")

	// Engagement
	viper.SetDefault("engage.max_replies", 10)
	viper.SetDefault("engage.post_limit", 10)

	// Notifications
	viper.SetDefault("notify.slack_webhook_url", "")
}

var defaultFeedURLs = []string{
	"https://kubernetes.io/feed.xml",
	"https://www.cncf.io/feed/",
	"https://aws.amazon.com/blogs/devops/feed/",
	"https://www.hashicorp.com/blog/feed.xml",
	"https://www.docker.com/blog/feed/",
	"https://github.blog/feed/",
	"https://martinfowler.com/feed.atom",
	"https://devclass.com/feed/",
	"https://thenewstack.io/feed/",
}

var defaultIncludeKeywords = []string{
	"devops", "devsecops", "sre", "kubernetes", "cloud", "platform",
	"terraform", "helm", "gitops", "cicd", "observability", "incident",
	"reliability", "aws", "gcp", "azure", "docker", "containers",
	"monitoring", "security", "vulnerability", "compliance",
}

var defaultExcludeKeywords = []string{
	"sponsored", "advertisement", "marketing", "webinar", "press release",
}
