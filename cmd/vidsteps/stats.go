package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhashe/vidsteps/internal/usecase"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate play history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(func(ctx context.Context, uc *usecase.StepAdminUseCase) error {
			stats, err := uc.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("sessions:        %d\n", stats.TotalSessions)
			fmt.Printf("  recordings:    %d\n", stats.Recordings)
			fmt.Printf("  playbacks:     %d\n", stats.Playbacks)
			fmt.Printf("videos tracked:  %d\n", stats.VideosTracked)
			fmt.Printf("avg steps/run:   %.1f\n", stats.AverageSteps)
			return nil
		})
	},
}
