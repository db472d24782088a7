package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dhashe/vidsteps/internal/infra/config"
	"github.com/dhashe/vidsteps/internal/infra/ffmpeg"
	"github.com/dhashe/vidsteps/internal/infra/mpv"
	"github.com/dhashe/vidsteps/internal/infra/sqlite"
	"github.com/dhashe/vidsteps/internal/tui"
	"github.com/dhashe/vidsteps/internal/usecase"
	"github.com/dhashe/vidsteps/pkg/logger"
)

var recordFlag bool

var rootCmd = &cobra.Command{
	Use:   "vidsteps [flags] <video-file>",
	Short: "Play a video one step at a time",
	Long: `vidsteps plays a local video file step by step. Step boundaries are
recorded interactively during playback and saved to a local database, so
later runs resume the same segmentation. Each step loops until you advance
to the next one.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSession,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVarP(&recordFlag, "record", "r", false,
		"re-record the step timestamps and overwrite any that already exist")
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(statsCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Fail on a bad path before any window appears.
	videoPath, err := usecase.ResolveVideoPath(args[0])
	if err != nil {
		return err
	}

	repo, err := sqlite.NewStepRepository(cfg.DBFile)
	if err != nil {
		return fmt.Errorf("open step database: %w", err)
	}
	defer repo.Close()

	prober := ffmpeg.NewProber(cfg.FFprobePath, log)
	launcher := mpv.NewLauncher(cfg.MPVPath, cfg.MPVArgs, cfg.SocketDir, log)

	player, err := launcher.Launch(ctx, "vidsteps: "+filepath.Base(videoPath))
	if err != nil {
		return fmt.Errorf("launch player: %w", err)
	}

	uc := usecase.NewSessionUseCase(repo, player, prober, log)

	session, done, err := uc.Begin(ctx, videoPath, recordFlag)
	if err != nil {
		_ = player.Quit(ctx)
		return err
	}
	if done {
		_ = uc.End(ctx, session)
		return fmt.Errorf("stored steps for %s start beyond the end of the video; re-record with --record", videoPath)
	}

	model := tui.NewModel(uc, session, player.Events(), log)
	program := tea.NewProgram(model, tea.WithContext(ctx))

	final, err := program.Run()
	if err != nil {
		log.Error("tui error", zap.Error(err))
		_ = player.Quit(context.Background())
		return err
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}
