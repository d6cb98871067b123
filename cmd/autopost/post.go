package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aditya493/linkedin-devops-automation/internal/logutil"
	"github.com/aditya493/linkedin-devops-automation/notify"
	"github.com/aditya493/linkedin-devops-automation/persona"
	"github.com/aditya493/linkedin-devops-automation/publish"
	"github.com/aditya493/linkedin-devops-automation/source"
)

func newPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Run one content cycle: fetch, dedup, compose and publish a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(cmd)
		},
	}
	return cmd
}

func runPost(cmd *cobra.Command) error {
	logger, err := logutil.LoggerFromViper()
	if err != nil {
		return err
	}
	m := modeFromViper()
	now := time.Now()
	rec := notify.NewRecord("post", m, now)
	ctx := cmd.Context()

	// State opens first: a corrupt ledger must abort before anything
	// irreversible, and before we burn provider quota.
	g, err := gateFromViper(m)
	if err != nil {
		return err
	}
	pubLedger, err := publishLedgerFromViper()
	if err != nil {
		return err
	}

	webhook := webhookFromViper()
	finish := func() {
		rec.FinishedAt = time.Now()
		if err := webhook.Send(ctx, rec); err != nil {
			logger.Warn("notify_failed", "error", err.Error())
		}
		logger.Info("run_done", "run_id", rec.RunID, "mode", rec.Mode,
			"published", rec.Published, "skipped", rec.Skipped, "failed", rec.Failed)
	}
	defer finish()

	// Advisory gate check before any network work.
	if d := g.MayPublish(now); !d.Allowed {
		logger.Info("run_gated", "reason", d.Reason)
		rec.Skipped++
		rec.Detail = "gate: " + d.Reason
		return nil
	}

	chain := chainFromViper(logger)
	feeds := feedSourceFromViper(logger)

	candidates, err := feeds.Fetch(ctx)
	if err != nil {
		rec.AddError(err)
		rec.Failed++
		return nil
	}
	candidates = source.Filter(candidates, filterFromViper(), now)

	var fresh []source.ContentCandidate
	for _, c := range candidates {
		if !pubLedger.IsDuplicate(c.Fingerprint, now) {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		logger.Info("run_no_candidates", "fetched", len(candidates))
		rec.Skipped++
		rec.Detail = "no fresh candidates"
		return nil
	}

	table, err := persona.LoadTable(viper.GetString("persona.table"))
	if err != nil {
		return err
	}
	composer := composerFromViper(chain, now.UnixNano())
	format := composer.PickFormat()

	lead := fresh[0]
	personaLine := persona.NewResolver(chain, table, logger).Choose(ctx, string(format), lead.Summary, lead.Title)
	text, err := composer.Build(ctx, format, personaLine, fresh)
	if err != nil {
		rec.AddError(fmt.Errorf("compose: %w", err))
		rec.Failed++
		return nil
	}

	pub := publish.New(g, pubLedger, linkedinFromViper(), m, logger)
	res := pub.Publish(ctx, lead, string(format), publish.ContentHash(personaLine), text)
	rec.Bypassed = rec.Bypassed || res.Bypassed

	switch res.Status {
	case publish.StatusPublished:
		rec.Published++
		rec.Detail = fmt.Sprintf("format=%s post_id=%s", format, res.PostID)
		if res.DryRun {
			rec.Preview = text
		}
	case publish.StatusSkipped:
		rec.Skipped++
		rec.Detail = "skipped: " + res.Reason
	case publish.StatusFailed:
		rec.Failed++
		rec.AddError(res.Err)
	}
	return nil
}
