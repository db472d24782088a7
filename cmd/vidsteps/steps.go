package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhashe/vidsteps/internal/infra/config"
	"github.com/dhashe/vidsteps/internal/infra/sqlite"
	"github.com/dhashe/vidsteps/internal/usecase"
	"github.com/dhashe/vidsteps/pkg/logger"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Inspect or clear saved step timestamps",
}

var stepsShowCmd = &cobra.Command{
	Use:   "show <video-file>",
	Short: "Print the saved step timestamps for a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(func(ctx context.Context, uc *usecase.StepAdminUseCase) error {
			path, steps, err := uc.Show(ctx, args[0])
			if err != nil {
				return err
			}
			if steps.IsEmpty() {
				fmt.Printf("no steps recorded for %s\n", path)
				return nil
			}
			fmt.Printf("%s (%d steps)\n", path, steps.Len())
			for i, t := range steps.Timestamps {
				fmt.Printf("  %3d  %10.3fs\n", i+1, t)
			}
			return nil
		})
	},
}

var stepsClearCmd = &cobra.Command{
	Use:   "clear <video-file>",
	Short: "Delete the saved step timestamps for a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(func(ctx context.Context, uc *usecase.StepAdminUseCase) error {
			path, err := uc.Clear(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("cleared steps for %s\n", path)
			return nil
		})
	},
}

var stepsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List videos with saved steps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(func(ctx context.Context, uc *usecase.StepAdminUseCase) error {
			videos, err := uc.Videos(ctx)
			if err != nil {
				return err
			}
			if len(videos) == 0 {
				fmt.Println("no videos recorded yet")
				return nil
			}
			for _, v := range videos {
				fmt.Println(v)
			}
			return nil
		})
	},
}

func init() {
	stepsCmd.AddCommand(stepsShowCmd)
	stepsCmd.AddCommand(stepsClearCmd)
	stepsCmd.AddCommand(stepsListCmd)
}

// withAdmin wires config, logger and repository for the non-interactive
// subcommands.
func withAdmin(fn func(ctx context.Context, uc *usecase.StepAdminUseCase) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	repo, err := sqlite.NewStepRepository(cfg.DBFile)
	if err != nil {
		return fmt.Errorf("open step database: %w", err)
	}
	defer repo.Close()

	return fn(context.Background(), usecase.NewStepAdminUseCase(repo, log))
}
