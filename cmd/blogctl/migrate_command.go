package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/embracingthegirlchild/site/internal/config"
	"github.com/embracingthegirlchild/site/internal/modules/storage/media"
	"github.com/embracingthegirlchild/site/internal/modules/storage/mediamigrate"
	"github.com/spf13/cobra"
)

type migrateFlags struct {
	backend        string
	source         string
	dryRun         bool
	allowAmbiguous bool
	timeout        time.Duration
	jsonOut        bool
	details        bool
}

func newMigrateMediaCommand(ctx *commandContext) *cobra.Command {
	var flags migrateFlags

	cmd := &cobra.Command{
		Use:   "migrate-media",
		Short: "Upload locally stored post images to the remote media backend",
		Long: "Re-uploads every post image that is still a local path and points the post at the\n" +
			"uploaded URL. Posts already on remote storage are skipped, so the command can be\n" +
			"run repeatedly. A failure on one post is reported and the run continues.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateMedia(cmd, ctx, flags)
		},
	}

	cmd.Flags().StringVar(&flags.backend, "backend", "", "Target backend: s3, minio or cloudinary (default: media.backend from config)")
	cmd.Flags().StringVar(&flags.source, "source", "", "Directory holding the original images (default: paths.source from config)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Resolve files without uploading or updating posts")
	cmd.Flags().BoolVar(&flags.allowAmbiguous, "allow-ambiguous", false, "Pick the first match when several stored files fit one post")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Per-upload timeout (default: media.upload_timeout_seconds from config)")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&flags.details, "details", false, "List every post, not only failures")
	return cmd
}

func runMigrateMedia(cmd *cobra.Command, cc *commandContext, flags migrateFlags) error {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}

	backend := strings.ToLower(strings.TrimSpace(flags.backend))
	if backend == "" {
		backend = cfg.Media.Backend
	}
	if backend == config.BackendLocal {
		return errors.New("cannot migrate to local storage, pass --backend s3, minio or cloudinary")
	}
	store, err := media.New(cfg, backend)
	if err != nil {
		if errors.Is(err, media.ErrMissingCredentials) {
			return fmt.Errorf("cannot migrate to %s, missing credentials: %s",
				backend, strings.Join(cfg.Media.MissingCredentials(backend), ", "))
		}
		return err
	}

	db, err := cc.ensureDB()
	if err != nil {
		return err
	}

	source := strings.TrimSpace(flags.source)
	if source == "" {
		source = cfg.SourceDir()
	}
	timeout := flags.timeout
	if timeout <= 0 {
		timeout = cfg.Media.UploadTimeout
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	migrator := mediamigrate.New(db, store, mediamigrate.Options{
		SourceDir:      source,
		DryRun:         flags.dryRun,
		AllowAmbiguous: flags.allowAmbiguous,
		Timeout:        timeout,
	}, cc.log(), nil)

	out := cmd.OutOrStdout()
	if !flags.jsonOut {
		fmt.Fprintf(out, "Migrating post images from %s to %s", source, store.Name())
		if flags.dryRun {
			fmt.Fprint(out, " (dry run)")
		}
		fmt.Fprintln(out)
	}

	report, runErr := migrator.Run(runCtx)
	if report != nil {
		if flags.jsonOut {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			printMigrationReport(out, report, flags.details)
		}
	}
	if errors.Is(runErr, context.Canceled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "interrupted; posts already migrated keep their new URLs")
	}
	return runErr
}

func printMigrationReport(w io.Writer, report *mediamigrate.Report, details bool) {
	rows := make([][]string, 0, len(report.Items))
	for _, item := range report.Items {
		if !details && item.Outcome != mediamigrate.OutcomeError {
			continue
		}
		detail := item.NewRef
		switch {
		case item.Error != "":
			detail = item.Error
		case item.Note != "" && detail == "":
			detail = item.Note
		}
		rows = append(rows, []string{item.Slug, item.Outcome, item.File, detail})
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, renderTable([]string{"Post", "Outcome", "File", "Detail"}, rows, nil))
	}

	summary := [][]string{
		{"Successfully migrated", strconv.Itoa(report.Success)},
		{"Already remote", strconv.Itoa(report.Skipped)},
		{"Errors", strconv.Itoa(report.Errors)},
		{"Total", strconv.Itoa(report.Total)},
	}
	fmt.Fprintln(w, renderTable([]string{"Summary", "Posts"}, summary, []columnAlignment{alignLeft, alignRight}))
}
