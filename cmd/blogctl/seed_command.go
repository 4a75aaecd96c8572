package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/modules/user"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type seedFlags struct {
	author   string
	posts    int
	comments int
	seed     int64
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var flags seedFlags

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a development database with sample posts and comments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to seed a production database")
			}
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}

			author, err := user.NewService(db).GetByUsername(cmd.Context(), flags.author)
			if err != nil {
				return err
			}
			if author == nil {
				return fmt.Errorf("user %q not found; create it with `blogctl users create`", flags.author)
			}

			seed := flags.seed
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			n, c, err := seedPosts(db, gofakeit.New(seed), author.ID, flags.posts, flags.comments)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d posts and %d comments for %s\n", n, c, author.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.author, "author", "", "Username that will own the posts")
	cmd.Flags().IntVar(&flags.posts, "posts", 12, "Number of posts")
	cmd.Flags().IntVar(&flags.comments, "comments", 3, "Maximum comments per post")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "Random seed (default: current time)")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func seedPosts(db *gorm.DB, fake *gofakeit.Faker, authorID string, posts, maxComments int) (int, int, error) {
	categories := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		categories[i] = string(c)
	}
	statuses := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		statuses[i] = string(s)
	}

	comments := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		start := time.Now().AddDate(0, -6, 0)
		for i := 0; i < posts; i++ {
			p := models.PostModel{
				Title:    strings.TrimSuffix(fake.Sentence(fake.Number(3, 8)), "."),
				Content:  fake.Paragraph(fake.Number(2, 5), 4, 12, "\n\n"),
				Category: models.PostCategory(fake.RandomString(categories)),
				Status:   models.PostStatus(fake.RandomString(statuses)),
				Views:    uint(fake.Number(0, 500)),
				AuthorID: authorID,
			}
			p.CreatedAt = fake.DateRange(start, time.Now())
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			for j := fake.Number(0, maxComments); j > 0; j-- {
				cm := models.CommentModel{PostID: p.ID, Name: fake.Name(), Body: fake.Sentence(fake.Number(6, 20))}
				if err := tx.Create(&cm).Error; err != nil {
					return err
				}
				comments++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return posts, comments, nil
}
