package mpv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dialTimeout = 5 * time.Second

type Launcher struct {
	binPath   string
	extraArgs []string
	socketDir string
	logger    *zap.Logger
}

func NewLauncher(binPath string, extraArgs []string, socketDir string, logger *zap.Logger) *Launcher {
	return &Launcher{
		binPath:   binPath,
		extraArgs: extraArgs,
		socketDir: socketDir,
		logger:    logger,
	}
}

// Player is an mpv process plus the IPC client controlling it.
type Player struct {
	*Client

	cmd      *exec.Cmd
	logger   *zap.Logger
	procDone chan struct{}
}

// Launch starts mpv idle with its IPC server enabled and connects to it. The
// video itself is loaded later through Player.Load.
func (l *Launcher) Launch(ctx context.Context, windowTitle string) (*Player, error) {
	socketPath := filepath.Join(l.socketDir,
		fmt.Sprintf("vidsteps-%s.sock", uuid.New().String()[:8]))

	args := []string{
		"--input-ipc-server=" + socketPath,
		"--idle=yes",
		"--keep-open=yes",
		"--force-window=yes",
		"--no-input-default-bindings",
		"--title=" + windowTitle,
	}
	args = append(args, l.extraArgs...)

	cmd := exec.CommandContext(ctx, l.binPath, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}

	l.logger.Info("mpv started",
		zap.Int("pid", cmd.Process.Pid),
		zap.String("socket", socketPath),
	)

	client, err := Dial(socketPath, dialTimeout, l.logger)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	p := &Player{
		Client:   client,
		cmd:      cmd,
		logger:   l.logger,
		procDone: make(chan struct{}),
	}

	go func() {
		defer close(p.procDone)
		err := cmd.Wait()
		l.logger.Info("mpv exited", zap.Error(err))
		_ = os.Remove(socketPath)
	}()

	return p, nil
}

// Quit tells mpv to exit and waits for the process, killing it if it does not
// stop in time.
func (p *Player) Quit(ctx context.Context) error {
	_ = p.Client.Quit(ctx)
	_ = p.Client.Close()

	select {
	case <-p.procDone:
	case <-time.After(3 * time.Second):
		p.logger.Warn("mpv did not exit, killing")
		_ = p.cmd.Process.Kill()
		<-p.procDone
	case <-ctx.Done():
		_ = p.cmd.Process.Kill()
		<-p.procDone
	}
	return nil
}
