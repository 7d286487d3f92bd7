package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/okarpov/jobradar/internal/job"
	"github.com/okarpov/jobradar/internal/store"
)

const (
	PromptInterested    = "Interested"
	PromptNotInterested = "Not interested"
	PromptReviewed      = "Mark reviewed"
	PromptSkip          = "Skip"
	PromptQuit          = "Quit"
	PromptYes           = "Yes"
	PromptNo            = "No"
)

var errExit = errors.New("exit requested")

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and triage discovered postings",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored postings",
	Run: func(cmd *cobra.Command, _ []string) {
		jobsList(cmd)
	},
}

var jobsMatchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List analyzed postings from the last two months, best score first",
	Run: func(cmd *cobra.Command, _ []string) {
		jobsMatches(cmd)
	},
}

var jobsReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively triage postings",
	Run: func(cmd *cobra.Command, _ []string) {
		jobsReview(cmd)
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a posting and everything derived from it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		jobsDelete(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd, jobsMatchesCmd, jobsReviewCmd, jobsDeleteCmd)

	jobsListCmd.Flags().String("status", "all", "filter by review status")
	jobsListCmd.Flags().String("source", "all", "filter by source")
	jobsListCmd.Flags().Int("limit", 25, "page size")
	jobsListCmd.Flags().Int("offset", 0, "page offset")

	jobsMatchesCmd.Flags().Int("limit", 50, "maximum matches to show")

	jobsReviewCmd.Flags().String("status", "new", "review postings with this status")

	jobsDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func jobsList(cmd *cobra.Command) {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		log.Fatalf("starting %s: %s", app, err)
	}
	defer a.Close()

	filter := store.Filter{
		Status: cmd.Flag("status").Value.String(),
		Source: cmd.Flag("source").Value.String(),
	}
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	filter.Offset, _ = cmd.Flags().GetInt("offset")

	jobs, err := a.Store.ListJobs(ctx, filter)
	if err != nil {
		a.Logger.Fatal("listing jobs", zap.Error(err))
	}

	total, err := a.Store.CountJobs(ctx, filter)
	if err != nil {
		a.Logger.Fatal("counting jobs", zap.Error(err))
	}

	for _, p := range jobs {
		fmt.Println(formatPosting(&p))
	}
	fmt.Printf("%d of %d postings\n", len(jobs), total)
}

func jobsMatches(cmd *cobra.Command) {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		log.Fatalf("starting %s: %s", app, err)
	}
	defer a.Close()

	limit, _ := cmd.Flags().GetInt("limit")

	matched, err := a.Store.MatchedJobs(ctx, limit)
	if err != nil {
		a.Logger.Fatal("listing matches", zap.Error(err))
	}

	for _, m := range matched {
		marker := " "
		if m.Analysis.Recommended {
			marker = "*"
		}
		note := ""
		if m.Analysis.Fallback {
			note = " (fallback)"
		}
		if m.ApplicationStatus != "" {
			note += fmt.Sprintf(" [application: %s]", m.ApplicationStatus)
		}
		fmt.Printf("%s %3d/100%s  #%d %s / %s / %s\n",
			marker, m.Analysis.Score, note,
			m.Posting.ID, m.Posting.Title, m.Posting.Company, m.Posting.Source,
		)
	}
	fmt.Printf("%d matches\n", len(matched))
}

func jobsReview(cmd *cobra.Command) {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		log.Fatalf("starting %s: %s", app, err)
	}
	defer a.Close()

	jobs, err := a.Store.ListJobs(ctx, store.Filter{
		Status: cmd.Flag("status").Value.String(),
		Limit:  100,
	})
	if err != nil {
		a.Logger.Fatal("listing jobs", zap.Error(err))
	}

	if len(jobs) == 0 {
		fmt.Println("nothing to review")
		return
	}

	for _, p := range jobs {
		if err := reviewOne(ctx, a, &p); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			a.Logger.Fatal("review failed", zap.Error(err))
		}
	}
}

func reviewOne(ctx context.Context, a *App, p *job.Posting) error {
	fmt.Println(formatPosting(p))
	if p.Description != "" {
		fmt.Println(p.Description)
	}

	prompt := promptui.Select{
		Label: fmt.Sprintf("Triage #%d", p.ID),
		Items: []string{PromptInterested, PromptNotInterested, PromptReviewed, PromptSkip, PromptQuit},
	}

	_, action, err := prompt.Run()
	if err != nil {
		return err
	}

	var status job.ReviewStatus
	switch action {
	case PromptInterested:
		status = job.ReviewInterested
	case PromptNotInterested:
		status = job.ReviewNotInterested
	case PromptReviewed:
		status = job.ReviewReviewed
	case PromptSkip:
		return nil
	case PromptQuit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}

	notesPrompt := promptui.Prompt{Label: "Notes (optional)"}
	notes, err := notesPrompt.Run()
	if err != nil {
		return err
	}

	return a.Store.SetReviewStatus(ctx, p.ID, status, notes)
}

func jobsDelete(cmd *cobra.Command, rawID string) {
	ctx := context.Background()

	jobID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		log.Fatalf("invalid job id %q", rawID)
	}

	a, err := newApp(ctx)
	if err != nil {
		log.Fatalf("starting %s: %s", app, err)
	}
	defer a.Close()

	p, err := a.Store.GetJob(ctx, jobID)
	if err != nil {
		a.Logger.Fatal("loading job", zap.Error(err))
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		prompt := promptui.Select{
			Label: fmt.Sprintf("Delete %q at %s and all related records?", p.Title, p.Company),
			Items: []string{PromptYes, PromptNo},
		}
		_, action, err := prompt.Run()
		if err != nil {
			a.Logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			return
		}
	}

	if err := a.Store.DeleteJob(ctx, jobID); err != nil {
		a.Logger.Fatal("deleting job", zap.Error(err))
	}

	a.Logger.Info("job deleted", zap.Int64("job_id", jobID))
}

func formatPosting(p *job.Posting) string {
	score := "  -"
	if p.Score != nil {
		score = fmt.Sprintf("%3d", *p.Score)
	}
	return fmt.Sprintf("#%d [%s] %s / %s / %s / %s (score %s)",
		p.ID, p.ReviewStatus, p.Title, p.Company, p.Location, p.Source, score)
}
