package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one discovery pass: fetch, dedupe, classify, persist, and score",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("sample", false, "use the built-in sample source instead of live sources")

	viper.BindPFlag("sources.sample", runCmd.Flags().Lookup("sample"))
}

func run(_ *cobra.Command) {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		log.Fatalf("starting %s: %s", app, err)
	}
	defer a.Close()

	a.Logger.Info("starting the jobradar", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(a.Config, "", "  ")
	a.Logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	result, err := a.Pipeline().Run(ctx)
	if err != nil {
		a.Logger.Fatal("pipeline run failed", zap.Error(err))
	}

	if result.Warning != "" {
		a.Logger.Warn(result.Warning)
	}

	if a.Config.Search != nil && a.Config.Search.AutoApply {
		if err := autoApply(ctx, a); err != nil {
			a.Logger.Fatal("auto apply failed", zap.Error(err))
		}
	}

	fmt.Printf("found %d postings (%d unique), saved %d, skipped %d, analyzed %d\n",
		result.Found, result.Unique, result.Saved, result.Skipped, result.Analyzed)
}

// autoApply creates applications for recommended matches that do not have one
// yet. With a scorer available each application gets a generated cover letter.
func autoApply(ctx context.Context, a *App) error {
	matched, err := a.Store.Recommended(ctx)
	if err != nil {
		return err
	}

	created := 0
	for _, m := range matched {
		if m.ApplicationStatus != "" {
			continue
		}

		coverLetter := ""
		if a.Scorer != nil && a.Profile != nil {
			coverLetter, err = a.Scorer.GenerateCoverLetter(ctx, a.Profile, &m.Posting, &m.Analysis)
			if err != nil {
				a.Logger.Warn("generating cover letter failed, creating application without one",
					zap.Int64("job_id", m.Posting.ID),
					zap.Error(err),
				)
				coverLetter = ""
			}
		}

		appID, err := a.Store.CreateApplication(ctx, m.Posting.ID, coverLetter, "created by auto-apply")
		if err != nil {
			return err
		}
		created++

		a.Logger.Info("application created",
			zap.Int64("application_id", appID),
			zap.Int64("job_id", m.Posting.ID),
			zap.String("title", m.Posting.Title),
			zap.Int("score", m.Analysis.Score),
		)
	}

	if created > 0 {
		a.Logger.Info("auto apply complete", zap.Int("created", created))
	}

	return nil
}
