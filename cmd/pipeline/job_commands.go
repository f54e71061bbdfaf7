package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nguyentantai21042004/speech-digest/internal/report"
	"github.com/nguyentantai21042004/speech-digest/internal/status"
	"github.com/nguyentantai21042004/speech-digest/internal/submitter"
	"github.com/spf13/cobra"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var bucket string
	var languageCode string
	var maxSpeakers int
	var wait bool

	cmd := &cobra.Command{
		Use:   "submit <key>",
		Short: "Start a transcription job for an uploaded audio object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if bucket == "" {
					bucket = a.cfg.Storage.Bucket
				}
				handle, err := a.newSubmitter().Submit(commandCtx(cmd), submitter.JobRequest{
					SourceBucket: bucket,
					SourceKey:    args[0],
					LanguageCode: languageCode,
					MaxSpeakers:  maxSpeakers,
				})
				if err != nil {
					return err
				}
				if wait {
					a.wait()
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, handle)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Job started: %s\nOutput: %s\n", handle.JobName, handle.OutputLocation)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket holding the audio (defaults to storage.bucket)")
	cmd.Flags().StringVarP(&languageCode, "language", "l", "es-ES", "BCP 47 language code of the recording")
	cmd.Flags().IntVarP(&maxSpeakers, "speakers", "s", 2, "Maximum number of distinct speakers")
	cmd.Flags().BoolVar(&wait, "wait", true, "Wait for a locally run recognition to finish")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job>",
		Short: "Show the progress of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				st, err := a.newTracker().CheckStatus(commandCtx(cmd), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, st)
				}
				rows := [][]string{
					{"Phase", string(st.Phase)},
					{"Recognition", string(st.RecognitionStatus)},
					{"Transcript ready", yesNo(st.FormattedReady)},
					{"Summary ready", yesNo(st.SummaryReady)},
				}
				if st.Failure != nil {
					rows = append(rows, []string{"Summary failure", fmt.Sprintf("%s (%s)", st.Failure.ErrorKind, st.Failure.Detail)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(), []string{st.JobName, ""}, rows, nil))
				return nil
			})
		},
	}
}

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var docxPath string

	cmd := &cobra.Command{
		Use:   "results <job>",
		Short: "Print the transcript and summary of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				res, err := a.newTracker().GetResults(commandCtx(cmd), args[0])
				if err != nil {
					return err
				}
				if docxPath != "" {
					if err := report.WriteDocx(docxPath, res); err != nil {
						return err
					}
					a.logger.Info(commandCtx(cmd), "Report written to %s", docxPath)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, res)
				}
				printResults(cmd, res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&docxPath, "docx", "", "Also write a Word report to this path")
	return cmd
}

func printResults(cmd *cobra.Command, res status.Results) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Summary:")
	switch {
	case res.Summary != nil:
		fmt.Fprintln(out, *res.Summary)
	case res.Failure != nil:
		fmt.Fprintf(out, "failed: %s (%s)\n", res.Failure.ErrorKind, res.Failure.Detail)
	default:
		fmt.Fprintln(out, "not ready")
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Transcript:")
	if res.Transcription != nil {
		fmt.Fprintln(out, *res.Transcription)
	} else {
		fmt.Fprintln(out, "not ready")
	}
}

type jobRow struct {
	JobName        string `json:"jobName"`
	FormattedReady bool   `json:"formattedReady"`
	SummaryReady   bool   `json:"summaryReady"`
	SummaryFailed  bool   `json:"summaryFailed"`
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List jobs found in the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				rows, err := listJobs(commandCtx(cmd), a.newLedger())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, rows)
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs")
					return nil
				}
				table := make([][]string, 0, len(rows))
				for i, row := range rows {
					table = append(table, []string{strconv.Itoa(i + 1), row.JobName, yesNo(row.FormattedReady), yesNo(row.SummaryReady), yesNo(row.SummaryFailed)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(),
					[]string{"#", "Job", "Transcript", "Summary", "Failed"}, table,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

func listJobs(ctx context.Context, ledger *status.Ledger) ([]jobRow, error) {
	jobs, err := ledger.Jobs(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]jobRow, 0, len(jobs))
	for _, job := range jobs {
		snap, err := ledger.Inspect(ctx, job)
		if err != nil {
			return nil, err
		}
		rows = append(rows, jobRow{
			JobName:        job,
			FormattedReady: snap.FormattedReady,
			SummaryReady:   snap.SummaryReady,
			SummaryFailed:  snap.Failure != nil,
		})
	}
	return rows, nil
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
