package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/modules/storage/media"
	"github.com/spf13/cobra"
)

const (
	imageRemote  = "remote"
	imageLocal   = "local"
	imageMissing = "missing"
)

func newImagesCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "images",
		Short: "Show where each post image is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}

			var posts []models.PostModel
			if err := db.WithContext(cmd.Context()).
				Where("image IS NOT NULL AND image <> ''").
				Order("created_at ASC").
				Find(&posts).Error; err != nil {
				return err
			}

			counts := map[string]int{}
			rows := make([][]string, 0, len(posts))
			for _, p := range posts {
				state := imageState(cfg.MediaDir(), p.Image)
				counts[state]++
				if all || state != imageRemote {
					rows = append(rows, []string{p.Slug, state, p.Image})
				}
			}

			out := cmd.OutOrStdout()
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"Post", "Storage", "Image"}, rows, nil))
			}
			fmt.Fprintln(out, renderTable([]string{"Storage", "Posts"}, [][]string{
				{imageRemote, strconv.Itoa(counts[imageRemote])},
				{imageLocal, strconv.Itoa(counts[imageLocal])},
				{imageMissing, strconv.Itoa(counts[imageMissing])},
			}, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include posts already on remote storage")
	return cmd
}

// imageState classifies ref; local refs count as missing when the file is
// not under mediaDir.
func imageState(mediaDir, ref string) string {
	if media.IsRemote(ref) {
		return imageRemote
	}
	if _, err := os.Stat(filepath.Join(mediaDir, filepath.FromSlash(ref))); err != nil {
		return imageMissing
	}
	return imageLocal
}
