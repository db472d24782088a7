package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dhashe/vidsteps/internal/domain/port"
)

// Client speaks the mpv JSON IPC protocol over a unix socket. A single reader
// goroutine routes command replies to their callers and fans property-change
// events out on the Events channel, which closes when mpv goes away.
type Client struct {
	conn   net.Conn
	logger *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan message
	closed  bool

	events    chan port.PlayerEvent
	done      chan struct{}
	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Dial connects to the IPC socket, retrying while mpv is still starting up.
func Dial(socketPath string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	deadline := time.Now().Add(timeout)

	var conn net.Conn
	var err error
	for {
		conn, err = net.Dial("unix", socketPath)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("dial mpv socket %s: %w", socketPath, err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	c := &Client{
		conn:    conn,
		logger:  logger,
		pending: make(map[int64]chan message),
		events:  make(chan port.PlayerEvent, 32),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.readLoop()

	if err := c.observeProperties(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) observeProperties() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := c.command(ctx, "observe_property", observeTimePos, "time-pos"); err != nil {
		return fmt.Errorf("observe time-pos: %w", err)
	}
	if _, err := c.command(ctx, "observe_property", observeEOF, "eof-reached"); err != nil {
		return fmt.Errorf("observe eof-reached: %w", err)
	}
	return nil
}

func (c *Client) readLoop() {
	defer c.wg.Done()
	defer c.shutdown()

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			c.logger.Warn("unparseable ipc line", zap.Error(err))
			continue
		}

		if msg.RequestID != 0 {
			c.mu.Lock()
			ch, ok := c.pending[msg.RequestID]
			delete(c.pending, msg.RequestID)
			c.mu.Unlock()
			if ok {
				ch <- msg
			}
			continue
		}

		c.handleEvent(msg)
	}

	if err := scanner.Err(); err != nil {
		c.logger.Debug("ipc read ended", zap.Error(err))
	}
}

func (c *Client) handleEvent(msg message) {
	switch msg.Event {
	case "property-change":
		switch msg.Name {
		case "time-pos":
			var pos float64
			if err := json.Unmarshal(msg.Data, &pos); err != nil {
				return // null while no file is loaded
			}
			c.emit(port.PlayerEvent{Kind: port.EventPosition, Position: pos})
		case "eof-reached":
			var eof bool
			if err := json.Unmarshal(msg.Data, &eof); err == nil && eof {
				c.emit(port.PlayerEvent{Kind: port.EventEndOfFile})
			}
		}
	case "end-file":
		if msg.Reason == "eof" {
			c.emit(port.PlayerEvent{Kind: port.EventEndOfFile})
		}
	}
}

// emit drops position updates rather than block the reader when the consumer
// lags. Other events wait for buffer space, but give up once Close has been
// called so the reader can drain the socket and exit.
func (c *Client) emit(ev port.PlayerEvent) {
	select {
	case c.events <- ev:
	default:
		if ev.Kind == port.EventPosition {
			return
		}
		select {
		case c.events <- ev:
		case <-c.closing:
		}
	}
}

func (c *Client) shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()

	close(c.done)
	close(c.events)
}

func (c *Client) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("mpv connection closed")
	}
	c.nextID++
	id := c.nextID
	ch := make(chan message, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal command: %w", err)
	}
	payload = append(payload, '\n')

	c.writeMu.Lock()
	_, err = c.conn.Write(payload)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("write command: %w", err)
	}

	select {
	case msg, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("mpv connection closed")
		}
		if msg.Error != replySuccess {
			return nil, fmt.Errorf("mpv: %s", msg.Error)
		}
		return msg.Data, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, ctx.Err()
	case <-c.done:
		return nil, fmt.Errorf("mpv connection closed")
	}
}

func (c *Client) setProperty(ctx context.Context, name string, value any) error {
	_, err := c.command(ctx, "set_property", name, value)
	return err
}

func (c *Client) Load(ctx context.Context, videoPath string) error {
	if _, err := c.command(ctx, "loadfile", videoPath); err != nil {
		return fmt.Errorf("load %s: %w", videoPath, err)
	}
	return nil
}

func (c *Client) SetPaused(ctx context.Context, paused bool) error {
	return c.setProperty(ctx, "pause", paused)
}

func (c *Client) SeekTo(ctx context.Context, seconds float64) error {
	if _, err := c.command(ctx, "seek", seconds, "absolute+exact"); err != nil {
		return fmt.Errorf("seek to %.3f: %w", seconds, err)
	}
	return nil
}

// LoopSegment makes mpv loop [start, end) via its A-B loop points.
func (c *Client) LoopSegment(ctx context.Context, start, end float64) error {
	if err := c.setProperty(ctx, "ab-loop-a", start); err != nil {
		return fmt.Errorf("set loop start: %w", err)
	}
	if err := c.setProperty(ctx, "ab-loop-b", end); err != nil {
		return fmt.Errorf("set loop end: %w", err)
	}
	return nil
}

func (c *Client) ClearLoop(ctx context.Context) error {
	if err := c.setProperty(ctx, "ab-loop-a", "no"); err != nil {
		return fmt.Errorf("clear loop start: %w", err)
	}
	if err := c.setProperty(ctx, "ab-loop-b", "no"); err != nil {
		return fmt.Errorf("clear loop end: %w", err)
	}
	return nil
}

func (c *Client) Position(ctx context.Context) (float64, error) {
	data, err := c.command(ctx, "get_property", "time-pos")
	if err != nil {
		return 0, fmt.Errorf("get position: %w", err)
	}
	var pos float64
	if err := json.Unmarshal(data, &pos); err != nil {
		return 0, fmt.Errorf("parse position: %w", err)
	}
	return pos, nil
}

func (c *Client) Events() <-chan port.PlayerEvent {
	return c.events
}

// Quit asks mpv to exit. The reader loop observes the closing socket and
// shuts the client down.
func (c *Client) Quit(ctx context.Context) error {
	_, err := c.command(ctx, "quit")
	if err != nil {
		// mpv may close the socket before replying.
		c.Close()
		return nil
	}
	return nil
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.closing) })
	err := c.conn.Close()
	c.wg.Wait()
	return err
}
