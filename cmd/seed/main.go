// Package main provides a tool to seed the database with demo publishing data.
//
// It creates a handful of authors with books, chapters, comments, reviews,
// likes and follows so the feed and counters have something to show.
//
// Usage:
//
//	DATA_PATH=~/FablePress/data go run ./cmd/seed
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/fablepress/fablepress-server/internal/aggregate"
	"github.com/fablepress/fablepress-server/internal/auth"
	"github.com/fablepress/fablepress-server/internal/service"
	"github.com/fablepress/fablepress-server/internal/store"
)

type seedAuthor struct {
	username string
	display  string
	bio      string
	books    []seedBook
}

type seedBook struct {
	title       string
	description string
	chapters    []string
}

var authors = []seedAuthor{
	{
		username: "mira_hollows",
		display:  "Mira Hollows",
		bio:      "Gothic serials, posted weekly.",
		books: []seedBook{
			{
				title:       "The Lantern Keeper",
				description: "A lighthouse keeper discovers the fog remembers names.",
				chapters:    []string{"The First Fog", "Names in the Glass", "What the Tide Returned"},
			},
			{
				title:       "Hollow Creek",
				description: "Small town, smaller secrets, one very deep well.",
				chapters:    []string{"The Well", "Downstream"},
			},
		},
	},
	{
		username: "j_okafor",
		display:  "Jide Okafor",
		bio:      "Hard SF and the occasional space opera.",
		books: []seedBook{
			{
				title:       "Relay Station Nine",
				description: "The last relay before the dark, and something is knocking.",
				chapters:    []string{"Signal Lost", "Handshake Protocol", "The Long Silence", "Reply All"},
			},
		},
	},
	{
		username: "penwright",
		display:  "Sam Penwright",
		bio:      "Reader first, writer second.",
		books:    nil,
	},
}

var comments = []string{
	"This chapter gave me chills. The pacing is perfect.",
	"Did not see that twist coming!",
	"Reading this on my commute was a mistake. Now I have to know what happens.",
	"The dialogue in this one is so sharp.",
}

var reviews = []string{
	"One of the best serials on here. Start from chapter one and thank me later.",
	"Atmospheric and tightly plotted. Waiting impatiently for updates.",
}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/FablePress/data")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := store.New(dbPath, logger, aggregate.NewPipeline())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	key, err := auth.LoadOrGenerateKey(dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load auth key: %v\n", err)
		os.Exit(1)
	}

	tokenService, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute, 720*time.Hour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create token service: %v\n", err)
		os.Exit(1)
	}

	sessionService := service.NewSessionService(st, tokenService, logger)
	userService := service.NewUserService(st, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, userService, logger)
	bookService := service.NewBookService(st, logger)
	chapterService := service.NewChapterService(st, logger)
	commentService := service.NewCommentService(st, logger)
	reviewService := service.NewReviewService(st, logger)
	socialService := service.NewSocialService(st, logger)

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Register authors and publish their catalogs.
	userIDs := make([]string, 0, len(authors))
	var chapterIDs, bookIDs []string

	for _, a := range authors {
		resp, err := authService.Register(ctx, service.RegisterRequest{
			Email:       a.username + "@example.com",
			Password:    "correct horse battery staple",
			Username:    a.username,
			DisplayName: a.display,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register %s (already seeded?): %v\n", a.username, err)
			os.Exit(1)
		}
		userID := resp.User.ID
		userIDs = append(userIDs, userID)

		if a.bio != "" {
			bio := a.bio
			if _, err := userService.UpdateProfile(ctx, userID, service.UpdateProfileRequest{Bio: &bio}); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to set bio for %s: %v\n", a.username, err)
				os.Exit(1)
			}
		}

		fmt.Printf("Created author %s (%s)\n", a.display, userID)

		for _, b := range a.books {
			book, err := bookService.Create(ctx, userID, service.CreateBookRequest{
				Title:       b.title,
				Description: b.description,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create book %q: %v\n", b.title, err)
				os.Exit(1)
			}
			bookIDs = append(bookIDs, book.ID)

			for i, title := range b.chapters {
				chapter, err := chapterService.Create(ctx, userID, service.CreateChapterRequest{
					BookID:  book.ID,
					Title:   title,
					Content: fmt.Sprintf("<p>Chapter %d of %s. %s</p>", i+1, b.title, loremParagraph(rng)),
				})
				if err != nil {
					fmt.Fprintf(os.Stderr, "Failed to create chapter %q: %v\n", title, err)
					os.Exit(1)
				}
				chapterIDs = append(chapterIDs, chapter.ID)
			}

			fmt.Printf("  Published %q with %d chapters\n", b.title, len(b.chapters))
		}
	}

	// Cross-pollinate: every user interacts with the others' work.
	for i, userID := range userIDs {
		for _, chapterID := range chapterIDs {
			if rng.Float32() > 0.6 {
				continue
			}
			if _, err := socialService.ToggleChapterLike(ctx, userID, chapterID); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to like chapter: %v\n", err)
				os.Exit(1)
			}
			if rng.Float32() < 0.5 {
				comment := comments[rng.Intn(len(comments))]
				if _, err := commentService.Create(ctx, userID, service.CreateCommentRequest{
					ChapterID: chapterID,
					Content:   comment,
				}); err != nil {
					fmt.Fprintf(os.Stderr, "Failed to comment: %v\n", err)
					os.Exit(1)
				}
			}
		}

		for _, bookID := range bookIDs {
			if rng.Float32() < 0.5 {
				if err := socialService.FollowBook(ctx, userID, bookID); err != nil {
					fmt.Fprintf(os.Stderr, "Failed to follow book: %v\n", err)
					os.Exit(1)
				}
			}
		}

		// Follow the next author around the ring.
		next := userIDs[(i+1)%len(userIDs)]
		if err := socialService.FollowAuthor(ctx, userID, next); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to follow author: %v\n", err)
			os.Exit(1)
		}
	}

	// The reader reviews what they followed.
	reader := userIDs[len(userIDs)-1]
	for i, bookID := range bookIDs {
		if i >= len(reviews) {
			break
		}
		if _, err := reviewService.Create(ctx, reader, service.CreateReviewRequest{
			BookID:  bookID,
			Content: reviews[i],
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to review: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("\nSeeded %d authors, %d books, %d chapters\n", len(userIDs), len(bookIDs), len(chapterIDs))
	fmt.Println("Log in with any seeded account, password: correct horse battery staple")
}

var loremSentences = []string{
	"The wind came in off the water and did not leave.",
	"Nobody in town would say the name out loud.",
	"She counted the steps twice and got two different numbers.",
	"The console had been quiet for nine days, which was eight days too long.",
	"He wrote the letter, burned it, and wrote it again from memory.",
}

func loremParagraph(rng *rand.Rand) string {
	n := 2 + rng.Intn(3)
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += " "
		}
		out += loremSentences[rng.Intn(len(loremSentences))]
	}
	return out
}
