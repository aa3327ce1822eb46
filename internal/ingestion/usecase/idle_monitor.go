package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	integrationusecase "timesheetpro-backend/internal/integration/usecase"
	"timesheetpro-backend/pkg/imapmail"

	"github.com/emersion/go-imap/client"
)

// IdleState is the lifecycle of the IMAP push monitor.
type IdleState string

const (
	IdleStopped  IdleState = "stopped"
	IdleStarting IdleState = "starting"
	IdleRunning  IdleState = "running"
	IdleStopping IdleState = "stopping"
)

var (
	ErrIdleAlreadyRunning = errors.New("idle monitor is already running")
	ErrIdleNotRunning     = errors.New("idle monitor is not running")
)

// The server may drop an IDLE after 30 minutes, so the client cycles well
// before that.
const idleLogoutTimeout = 24 * time.Minute

// IdleMonitor keeps a long-lived IMAP connection in IDLE and triggers an
// email engine run whenever the mailbox reports new messages. It only
// works with direct credentials; OAuth accounts get push via Pub/Sub.
type IdleMonitor struct {
	settings *integrationusecase.SettingsStore
	engine   Engine

	mu      sync.Mutex
	state   IdleState
	current *client.Client
	stop    chan struct{}
	done    chan struct{}
}

func NewIdleMonitor(settings *integrationusecase.SettingsStore, engine Engine) *IdleMonitor {
	return &IdleMonitor{
		settings: settings,
		engine:   engine,
		state:    IdleStopped,
	}
}

func (m *IdleMonitor) State() IdleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *IdleMonitor) IsRunning() bool {
	state := m.State()
	return state == IdleStarting || state == IdleRunning
}

// Start launches the monitor loop. Starting an already running monitor is
// an error, there is only one mailbox to watch.
func (m *IdleMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != IdleStopped {
		return ErrIdleAlreadyRunning
	}

	m.state = IdleStarting
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.loop(m.stop, m.done)

	log.Println("[EmailIdle] Monitor starting")
	return nil
}

// Stop shuts the monitor down and waits for the loop to exit. A wedged
// connection is terminated so Stop returns in bounded time.
func (m *IdleMonitor) Stop() error {
	m.mu.Lock()
	if m.state == IdleStopped || m.state == IdleStopping {
		m.mu.Unlock()
		return ErrIdleNotRunning
	}
	m.state = IdleStopping
	stop, done := m.stop, m.done
	m.mu.Unlock()

	close(stop)

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		m.mu.Lock()
		if m.current != nil {
			m.current.Terminate()
		}
		m.mu.Unlock()
		<-done
	}

	m.mu.Lock()
	m.state = IdleStopped
	m.mu.Unlock()

	log.Println("[EmailIdle] Monitor stopped")
	return nil
}

func (m *IdleMonitor) loop(stop, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		default:
		}

		settings, cfg, err := m.settings.LoadEmail()
		if err != nil {
			log.Printf("[EmailIdle] Cannot load email settings: %v", err)
			if !m.sleep(stop, time.Minute) {
				return
			}
			continue
		}
		if settings.Direct == nil {
			log.Println("[EmailIdle] Email integration uses OAuth, IDLE unavailable")
			if !m.sleep(stop, time.Minute) {
				return
			}
			continue
		}
		if !cfg.IsActive {
			if !m.sleep(stop, time.Minute) {
				return
			}
			continue
		}

		c, err := imapmail.Dial(settings.Direct)
		if err != nil {
			log.Printf("[EmailIdle] Connection failed: %v", err)
			if !m.sleep(stop, 30*time.Second) {
				return
			}
			continue
		}
		if _, err := c.Select("INBOX", true); err != nil {
			log.Printf("[EmailIdle] Failed to select INBOX: %v", err)
			c.Logout()
			if !m.sleep(stop, 30*time.Second) {
				return
			}
			continue
		}

		m.setConnection(c, IdleRunning)
		log.Println("[EmailIdle] Connected, entering IDLE")

		stopped := m.idle(c, stop)
		c.Logout()
		m.setConnection(nil, IdleStarting)

		if stopped {
			return
		}
		log.Println("[EmailIdle] Connection lost, reconnecting")
		if !m.sleep(stop, 5*time.Second) {
			return
		}
	}
}

// idle runs IDLE sessions until the connection fails or stop closes.
// Returns true when the monitor was asked to stop.
func (m *IdleMonitor) idle(c *client.Client, stop chan struct{}) bool {
	updates := make(chan client.Update, 16)
	c.Updates = updates

	for {
		stopIdle := make(chan struct{})
		idleDone := make(chan error, 1)
		go func() {
			idleDone <- c.Idle(stopIdle, &client.IdleOptions{LogoutTimeout: idleLogoutTimeout})
		}()

		runScan := false
		select {
		case update := <-updates:
			if _, ok := update.(*client.MailboxUpdate); ok {
				runScan = true
			}
			close(stopIdle)
			if err := <-idleDone; err != nil {
				log.Printf("[EmailIdle] IDLE ended: %v", err)
				return false
			}
		case err := <-idleDone:
			if err != nil {
				log.Printf("[EmailIdle] IDLE ended: %v", err)
				return false
			}
		case <-stop:
			close(stopIdle)
			<-idleDone
			return true
		}

		if runScan {
			log.Println("[EmailIdle] Mailbox update received, triggering scan")
			result := m.engine.Run(context.Background())
			if !result.Success {
				log.Printf("[EmailIdle] Triggered scan failed: %s", result.Message)
			}
		}
	}
}

func (m *IdleMonitor) setConnection(c *client.Client, state IdleState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = c
	// Stop owns the state once shutdown began.
	if m.state != IdleStopping {
		m.state = state
	}
}

// sleep waits d unless stop closes first; returns false on stop.
func (m *IdleMonitor) sleep(stop chan struct{}, d time.Duration) bool {
	select {
	case <-stop:
		return false
	case <-time.After(d):
		return true
	}
}
