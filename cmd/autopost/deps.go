package main

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aditya493/linkedin-devops-automation/compose"
	"github.com/aditya493/linkedin-devops-automation/failover"
	"github.com/aditya493/linkedin-devops-automation/gate"
	"github.com/aditya493/linkedin-devops-automation/internal/statefile"
	"github.com/aditya493/linkedin-devops-automation/internal/statepaths"
	"github.com/aditya493/linkedin-devops-automation/ledger"
	"github.com/aditya493/linkedin-devops-automation/llm"
	"github.com/aditya493/linkedin-devops-automation/mode"
	"github.com/aditya493/linkedin-devops-automation/notify"
	"github.com/aditya493/linkedin-devops-automation/platform/linkedin"
	"github.com/aditya493/linkedin-devops-automation/providers/gemini"
	"github.com/aditya493/linkedin-devops-automation/providers/groq"
	"github.com/aditya493/linkedin-devops-automation/providers/huggingface"
	"github.com/aditya493/linkedin-devops-automation/providers/openrouter"
	"github.com/aditya493/linkedin-devops-automation/source"
)

func modeFromViper() mode.ExecutionMode {
	return mode.ExecutionMode{
		DryRun:           viper.GetBool("dry_run"),
		BypassRateLimits: viper.GetBool("bypass_rate_limits"),
	}
}

// backendsFromViper builds the failover order from configured providers.
// Providers without an API key are left out of the chain.
func backendsFromViper() []llm.Client {
	var backends []llm.Client
	for _, name := range viper.GetStringSlice("providers.order") {
		key := viper.GetString("providers." + name + ".api_key")
		model := viper.GetString("providers." + name + ".model")
		if strings.TrimSpace(key) == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "groq":
			backends = append(backends, groq.New(key, model))
		case "gemini":
			backends = append(backends, gemini.New(key, model))
		case "openrouter":
			backends = append(backends, openrouter.New(key, model))
		case "huggingface":
			backends = append(backends, huggingface.New(key, model))
		}
	}
	return backends
}

func chainFromViper(logger *slog.Logger) *failover.Chain {
	return failover.New(backendsFromViper(), viper.GetDuration("providers.timeout"), logger)
}

func linkedinFromViper() *linkedin.Client {
	return linkedin.New(linkedin.Config{
		AccessToken: viper.GetString("linkedin.access_token"),
		AuthorURN:   viper.GetString("linkedin.author_urn"),
		BaseURL:     viper.GetString("linkedin.base_url"),
		Timeout:     viper.GetDuration("linkedin.timeout"),
	})
}

func gateFromViper(m mode.ExecutionMode) (*gate.Gate, error) {
	if err := statefile.EnsureDir(statepaths.StateDir()); err != nil {
		return nil, err
	}
	return gate.Open(statepaths.RateStatePath(), gate.Config{
		MinInterval:   viper.GetDuration("gate.min_post_interval"),
		MaxPerDay:     viper.GetInt("gate.max_posts_per_day"),
		ErrorCooldown: viper.GetDuration("gate.cooldown_on_error"),
		KillSwitch:    viper.GetBool("gate.kill_switch"),
		Bypass:        m.BypassRateLimits,
	})
}

func publishLedgerFromViper() (*ledger.PublishLedger, error) {
	if err := statefile.EnsureDir(statepaths.StateDir()); err != nil {
		return nil, err
	}
	return ledger.OpenPublishLedger(statepaths.PublishLedgerPath(), viper.GetInt("dedup.window_days"))
}

func replyLedgerFromViper() (*ledger.ReplyLedger, error) {
	if err := statefile.EnsureDir(statepaths.StateDir()); err != nil {
		return nil, err
	}
	return ledger.OpenReplyLedger(statepaths.ReplyLedgerPath())
}

func feedSourceFromViper(logger *slog.Logger) *source.FeedSource {
	return source.NewFeedSource(source.FeedConfig{
		URLs:         viper.GetStringSlice("feeds.urls"),
		PerFeedLimit: viper.GetInt("feeds.per_feed_limit"),
		Timeout:      viper.GetDuration("feeds.timeout"),
	}, logger)
}

func filterFromViper() source.FilterConfig {
	return source.FilterConfig{
		Include: viper.GetStringSlice("filter.include"),
		Exclude: viper.GetStringSlice("filter.exclude"),
		MinAge:  time.Duration(viper.GetInt("filter.min_age_hours")) * time.Hour,
		MaxAge:  time.Duration(viper.GetInt("filter.max_age_hours")) * time.Hour,
	}
}

func composerFromViper(chain *failover.Chain, seed int64) *compose.Composer {
	var formats []compose.Format
	for _, f := range viper.GetStringSlice("compose.formats") {
		formats = append(formats, compose.Format(strings.TrimSpace(f)))
	}
	return compose.New(chain, compose.Config{
		MaxChars:    viper.GetInt("compose.max_chars"),
		Hashtags:    viper.GetStringSlice("compose.hashtags"),
		MaxHashtags: viper.GetInt("compose.max_hashtags"),
		Formats:     formats,
		ForceFormat: compose.Format(viper.GetString("compose.force_format")),
	}, seed)
}

func webhookFromViper() *notify.Webhook {
	return notify.NewWebhook(nil, viper.GetString("notify.slack_webhook_url"))
}
