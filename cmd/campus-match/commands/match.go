package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/jinford/campus-match/internal/core/matching"
)

// MatchProjectsAction は学生に合うプロジェクトを推薦するコマンドのアクション
func MatchProjectsAction(ctx context.Context, cmd *cli.Command) error {
	studentID, err := parseIDFlag(cmd, "student-id")
	if err != nil {
		return err
	}

	return runMatch(ctx, cmd, func(appCtx *AppContext, params matching.MatchParams) ([]matching.MatchResult, error) {
		return appCtx.Container.MatchService.FindMatchingProjects(ctx, studentID, params)
	})
}

// MatchCoursesAction は学生に合うコースを推薦するコマンドのアクション
func MatchCoursesAction(ctx context.Context, cmd *cli.Command) error {
	studentID, err := parseIDFlag(cmd, "student-id")
	if err != nil {
		return err
	}

	return runMatch(ctx, cmd, func(appCtx *AppContext, params matching.MatchParams) ([]matching.MatchResult, error) {
		return appCtx.Container.MatchService.FindMatchingCourses(ctx, studentID, params)
	})
}

// MatchStudentsAction はプロジェクトに合う学生を推薦するコマンドのアクション
func MatchStudentsAction(ctx context.Context, cmd *cli.Command) error {
	projectID, err := parseIDFlag(cmd, "project-id")
	if err != nil {
		return err
	}

	return runMatch(ctx, cmd, func(appCtx *AppContext, params matching.MatchParams) ([]matching.MatchResult, error) {
		return appCtx.Container.MatchService.FindMatchingStudents(ctx, projectID, params)
	})
}

func runMatch(
	ctx context.Context,
	cmd *cli.Command,
	find func(appCtx *AppContext, params matching.MatchParams) ([]matching.MatchResult, error),
) error {
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	params := matching.MatchParams{
		InitialK: cmd.Int("initial-k"),
		FinalK:   cmd.Int("final-k"),
	}

	results, err := find(appCtx, params)
	if err != nil {
		if errors.Is(err, matching.ErrStudentNotFound) || errors.Is(err, matching.ErrProjectNotFound) {
			return fmt.Errorf("対象が見つかりません: %w", err)
		}
		return fmt.Errorf("マッチングに失敗: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(results); err != nil {
		return fmt.Errorf("結果の出力に失敗: %w", err)
	}
	return nil
}

func parseIDFlag(cmd *cli.Command, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(cmd.String(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("不正な%s: %w", name, err)
	}
	return id, nil
}
