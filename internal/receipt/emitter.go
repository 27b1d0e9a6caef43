package receipt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Emitter hands a receipt to whatever prints it. Implementations log their
// own failures; Emit never reports one.
type Emitter interface {
	Emit(ctx context.Context, r Receipt)
}

// Link is the transport to a receipt printer.
type Link interface {
	Initialize(ctx context.Context) error
	// Available reports whether the transport can be used at all (radio on,
	// network up).
	Available(ctx context.Context) (bool, error)
	Connect(ctx context.Context, deviceID string) error
	Write(ctx context.Context, deviceID string, payload []byte) error
	Disconnect(ctx context.Context, deviceID string) error
}

// Breaker fast-fails calls while a dependency keeps failing.
type Breaker interface {
	Execute(fn func() error) error
}

var (
	ErrNoPrinter       = errors.New("no printer configured")
	ErrLinkUnavailable = errors.New("printer link unavailable")
)

// PrinterEmitter prints receipts on the device identified by deviceID.
// Concurrent prints are queued: a device holds one connection at a time.
type PrinterEmitter struct {
	link     Link
	deviceID string
	layout   Layout
	breaker  Breaker
	timeout  time.Duration

	sendMu sync.Mutex
}

// NewPrinterEmitter builds an emitter; breaker may be nil. An empty deviceID
// means no printer has been set up and every Emit is a logged no-op.
func NewPrinterEmitter(link Link, deviceID string, layout Layout, breaker Breaker, timeout time.Duration) *PrinterEmitter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PrinterEmitter{link: link, deviceID: deviceID, layout: layout, breaker: breaker, timeout: timeout}
}

func (e *PrinterEmitter) Layout() Layout { return e.layout }

func (e *PrinterEmitter) Emit(ctx context.Context, r Receipt) {
	if err := e.Print(ctx, r); err != nil {
		if errors.Is(err, ErrNoPrinter) {
			log.Warn().Str("sale_id", r.SaleID.String()).Msg("receipt: no printer configured, skipping")
			return
		}
		log.Error().Err(err).Str("sale_id", r.SaleID.String()).Str("device", e.deviceID).Msg("receipt: print failed")
		return
	}
	log.Info().Str("sale_id", r.SaleID.String()).Str("device", e.deviceID).Msg("receipt: printed")
}

// Print runs one print attempt and returns what went wrong. Callers that need
// the fire-and-forget contract use Emit.
func (e *PrinterEmitter) Print(ctx context.Context, r Receipt) error {
	if e.deviceID == "" || e.link == nil {
		return ErrNoPrinter
	}
	payload := Encode(r, e.layout)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if e.breaker == nil {
		return e.send(ctx, payload)
	}
	return e.breaker.Execute(func() error { return e.send(ctx, payload) })
}

func (e *PrinterEmitter) send(ctx context.Context, payload []byte) error {
	e.sendMu.Lock()
	defer e.sendMu.Unlock()

	if err := e.link.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	ok, err := e.link.Available(ctx)
	if err != nil {
		return fmt.Errorf("availability: %w", err)
	}
	if !ok {
		return ErrLinkUnavailable
	}
	if err := e.link.Connect(ctx, e.deviceID); err != nil {
		return fmt.Errorf("connect %s: %w", e.deviceID, err)
	}
	defer func() {
		if err := e.link.Disconnect(context.WithoutCancel(ctx), e.deviceID); err != nil {
			log.Warn().Err(err).Str("device", e.deviceID).Msg("receipt: disconnect failed")
		}
	}()
	if err := e.link.Write(ctx, e.deviceID, payload); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
