package cmd

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/okarpov/jobradar/internal/job"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Track applications derived from postings",
}

var appsCreateCmd = &cobra.Command{
	Use:   "create <job-id>",
	Short: "Create an application for a posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		appsCreate(cmd, args[0])
	},
}

var appsUpdateCmd = &cobra.Command{
	Use:   "update <application-id>",
	Short: "Move an application to a new status",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		appsUpdate(cmd, args[0])
	},
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications, newest first",
	Run: func(cmd *cobra.Command, _ []string) {
		appsList(cmd)
	},
}

func init() {
	rootCmd.AddCommand(appsCmd)
	appsCmd.AddCommand(appsCreateCmd, appsUpdateCmd, appsListCmd)

	appsCreateCmd.Flags().String("notes", "", "application notes")
	appsCreateCmd.Flags().Bool("cover-letter", false, "generate a cover letter with the configured AI")

	appsUpdateCmd.Flags().String("status", "", "new status (pending, approved, applied, rejected, interview, hired)")
	appsUpdateCmd.Flags().String("response-type", "", "type of response received from the employer")
	appsUpdateCmd.Flags().String("notes", "", "replace application notes")
	_ = appsUpdateCmd.MarkFlagRequired("status")

	appsListCmd.Flags().String("status", "", "filter by application status")
}

func appsCreate(cmd *cobra.Command, rawID string) {
	ctx := context.Background()

	jobID := parseID(rawID, "job")

	a, err := newApp(ctx)
	if err != nil {
		log.Fatalf("starting %s: %s", app, err)
	}
	defer a.Close()

	p, err := a.Store.GetJob(ctx, jobID)
	if err != nil {
		a.Logger.Fatal("loading job", zap.Error(err))
	}

	notes, _ := cmd.Flags().GetString("notes")

	coverLetter := ""
	if want, _ := cmd.Flags().GetBool("cover-letter"); want {
		if a.Scorer == nil || a.Profile == nil {
			a.Logger.Fatal("cover letter generation needs ai enabled and a profile configured")
		}

		analysis, err := a.Store.GetAnalysis(ctx, jobID)
		if err != nil {
			a.Logger.Fatal("loading analysis", zap.Error(err))
		}

		coverLetter, err = a.Scorer.GenerateCoverLetter(ctx, a.Profile, p, analysis)
		if err != nil {
			a.Logger.Fatal("generating cover letter", zap.Error(err))
		}
	}

	appID, err := a.Store.CreateApplication(ctx, jobID, coverLetter, notes)
	if err != nil {
		a.Logger.Fatal("creating application", zap.Error(err))
	}

	a.Logger.Info("application created",
		zap.Int64("application_id", appID),
		zap.Int64("job_id", jobID),
		zap.String("title", p.Title),
	)
}

func appsUpdate(cmd *cobra.Command, rawID string) {
	ctx := context.Background()

	appID := parseID(rawID, "application")

	a, err := newApp(ctx)
	if err != nil {
		log.Fatalf("starting %s: %s", app, err)
	}
	defer a.Close()

	status := job.ApplicationStatus(cmd.Flag("status").Value.String())
	responseType, _ := cmd.Flags().GetString("response-type")
	notes, _ := cmd.Flags().GetString("notes")

	if err := a.Store.UpdateApplicationStatus(ctx, appID, status, responseType, notes); err != nil {
		a.Logger.Fatal("updating application", zap.Error(err))
	}

	a.Logger.Info("application updated",
		zap.Int64("application_id", appID),
		zap.String("status", string(status)),
	)
}

func appsList(cmd *cobra.Command) {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		log.Fatalf("starting %s: %s", app, err)
	}
	defer a.Close()

	status := job.ApplicationStatus(cmd.Flag("status").Value.String())

	records, err := a.Store.ListApplications(ctx, status)
	if err != nil {
		a.Logger.Fatal("listing applications", zap.Error(err))
	}

	for _, r := range records {
		score := "-"
		if r.Score != nil {
			score = fmt.Sprintf("%d", *r.Score)
		}
		response := ""
		if r.ResponseReceived {
			response = fmt.Sprintf(" response: %s", r.ResponseType)
		}
		fmt.Printf("#%d [%s] %s / %s (job #%d, score %s)%s\n",
			r.ID, r.Status, r.Title, r.Company, r.JobID, score, response)
	}
	fmt.Printf("%d applications\n", len(records))
}

func parseID(raw, kind string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Fatalf("invalid %s id %q", kind, raw)
	}
	return id
}
