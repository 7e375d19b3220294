package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrDispatcherStopped is returned by Dispatch after Shutdown.
var ErrDispatcherStopped = errors.New("notification dispatcher stopped")

// Dispatcher renders notifications synchronously and delivers them on a
// bounded pool of goroutines. Delivery failures are logged, never returned.
type Dispatcher interface {
	Start(ctx context.Context) error
	Shutdown()
	Dispatch(ctx context.Context, n Notification) error
}

type Config struct {
	MaxConcurrent int
	SendTimeout   time.Duration
	Logger        logrus.FieldLogger
}

type dispatcher struct {
	cfg      Config
	sender   Sender
	renderer *Renderer

	sem    chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
}

func NewDispatcher(cfg Config, sender Sender, renderer *Renderer) Dispatcher {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if renderer == nil {
		renderer = NewRenderer()
	}
	return &dispatcher{
		cfg:      cfg,
		sender:   sender,
		renderer: renderer,
		sem:      make(chan struct{}, cfg.MaxConcurrent),
	}
}

func (d *dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.cfg.Logger.Infof("notification dispatcher started, workers: %d", d.cfg.MaxConcurrent)
	return nil
}

// Shutdown stops accepting notifications and waits for queued deliveries.
func (d *dispatcher) Shutdown() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
	if d.cancel != nil {
		d.cancel()
	}
	d.cfg.Logger.Info("notification dispatcher stopped")
}

func (d *dispatcher) Dispatch(_ context.Context, n Notification) error {
	msg, err := d.renderer.Render(n)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.ctx == nil {
		return ErrDispatcherStopped
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		select {
		case <-d.ctx.Done():
			d.cfg.Logger.WithField("to", msg.To).Warn("notification dropped: dispatcher cancelled")
			return
		case d.sem <- struct{}{}:
			defer func() { <-d.sem }()
			d.deliver(msg, n.Template)
		}
	}()
	return nil
}

func (d *dispatcher) deliver(msg Message, template string) {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.SendTimeout)
	defer cancel()

	logger := d.cfg.Logger.WithFields(logrus.Fields{"to": msg.To, "template": template})
	if err := d.sender.Send(ctx, msg); err != nil {
		logger.Warnf("deliver notification: %v", err)
		return
	}
	logger.Debug("notification delivered")
}
