package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aditya493/linkedin-devops-automation/engage"
	"github.com/aditya493/linkedin-devops-automation/internal/logutil"
	"github.com/aditya493/linkedin-devops-automation/notify"
)

func newEngageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "engage",
		Short: "Reply to unanswered comments on the author's recent posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngage(cmd)
		},
	}
}

func runEngage(cmd *cobra.Command) error {
	logger, err := logutil.LoggerFromViper()
	if err != nil {
		return err
	}
	m := modeFromViper()
	rec := notify.NewRecord("engage", m, time.Now())
	ctx := cmd.Context()

	// Corrupt state aborts before any network work, same as posting.
	g, err := gateFromViper(m)
	if err != nil {
		return err
	}
	replyLedger, err := replyLedgerFromViper()
	if err != nil {
		return err
	}

	reconciler := engage.New(
		linkedinFromViper(),
		chainFromViper(logger),
		replyLedger,
		g,
		engage.Config{
			MaxReplies: viper.GetInt("engage.max_replies"),
			PostLimit:  viper.GetInt("engage.post_limit"),
		},
		m,
		logger,
	)

	sum := reconciler.Reconcile(ctx)
	rec.Replied = sum.Replied
	rec.Skipped = sum.Skipped
	rec.Failed = sum.Failed
	if sum.Gate != "" {
		rec.Skipped++
		rec.Detail = "gate: " + sum.Gate
	}
	for _, e := range sum.Errors {
		rec.AddError(e)
	}
	rec.FinishedAt = time.Now()

	if err := webhookFromViper().Send(ctx, rec); err != nil {
		logger.Warn("notify_failed", "error", err.Error())
	}
	logger.Info("run_done", "run_id", rec.RunID, "mode", rec.Mode,
		"replied", rec.Replied, "skipped", rec.Skipped, "failed", rec.Failed)
	return nil
}
