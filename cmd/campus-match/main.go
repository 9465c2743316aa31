package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jinford/campus-match/cmd/campus-match/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	envFlag := &cli.StringFlag{
		Name:  "env",
		Usage: "環境変数ファイルパス",
		Value: ".env",
	}
	initialKFlag := &cli.IntFlag{
		Name:  "initial-k",
		Usage: "一次検索で残す候補数",
	}
	finalKFlag := &cli.IntFlag{
		Name:  "final-k",
		Usage: "最終的に返す件数",
	}

	app := &cli.Command{
		Name:  "campus-match",
		Usage: "学生・プロジェクト・コースの双方向AIマッチングエンジン",
		Commands: []*cli.Command{
			{
				Name:  "match",
				Usage: "マッチング推薦コマンド",
				Commands: []*cli.Command{
					{
						Name:  "projects",
						Usage: "学生に合うプロジェクトを推薦",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:     "student-id",
								Usage:    "学生ID (UUID)",
								Required: true,
							},
							initialKFlag,
							finalKFlag,
						},
						Action: commands.MatchProjectsAction,
					},
					{
						Name:  "courses",
						Usage: "学生に合うコースを推薦",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:     "student-id",
								Usage:    "学生ID (UUID)",
								Required: true,
							},
							initialKFlag,
							finalKFlag,
						},
						Action: commands.MatchCoursesAction,
					},
					{
						Name:  "students",
						Usage: "プロジェクトに合う学生を推薦",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:     "project-id",
								Usage:    "プロジェクトID (UUID)",
								Required: true,
							},
							initialKFlag,
							finalKFlag,
						},
						Action: commands.MatchStudentsAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
