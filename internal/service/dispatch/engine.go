package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/lead-relay/internal/domain"
	"github.com/ignite/lead-relay/internal/pkg/logger"
	"github.com/ignite/lead-relay/internal/service/deliverylog"
	"github.com/ignite/lead-relay/internal/service/registry"
	"github.com/ignite/lead-relay/internal/template"
)

const (
	// DefaultSendTimeout bounds a single channel-sender call. A timed-out
	// send is recorded as failed with reason "timeout"; a record never
	// stays pending.
	DefaultSendTimeout = 10 * time.Second

	// DefaultMaxConcurrent bounds parallel sends for one dispatch so the
	// provider is not overwhelmed.
	DefaultMaxConcurrent = 5

	// resolveTimeout bounds the terminal log write. Resolution runs
	// detached from the caller's context: a client that disconnects
	// mid-send must not strand the record in pending.
	resolveTimeout = 5 * time.Second

	timeoutReason = "timeout"
)

// ActivitySink receives the engine's observability notifications. The live
// monitor implements it; a nil sink disables notifications.
type ActivitySink interface {
	LeadReceived(lead domain.LeadEvent)
	DeliveryResolved(rec domain.DeliveryRecord)
	SystemEvent(title, description string)
}

// Options tune the engine's concurrency contract.
type Options struct {
	// MaxConcurrent bounds parallel sends per dispatch. <= 0 selects
	// DefaultMaxConcurrent.
	MaxConcurrent int
	// SendTimeout is the per-send deadline. <= 0 selects DefaultSendTimeout.
	SendTimeout time.Duration
}

// Engine coordinates registry, template rendering, the channel sender, and
// the delivery log for one dispatch. Safe for concurrent use: two dispatches
// for different leads never block one another.
type Engine struct {
	registry  *registry.Registry
	templates *template.Store
	renderer  *template.Renderer
	log       *deliverylog.Log
	sender    ChannelSender
	sink      ActivitySink

	maxConcurrent int
	sendTimeout   time.Duration
}

// NewEngine creates a dispatch engine. sink may be nil.
func NewEngine(reg *registry.Registry, templates *template.Store, renderer *template.Renderer,
	log *deliverylog.Log, sender ChannelSender, sink ActivitySink, opts Options) *Engine {

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}
	return &Engine{
		registry:      reg,
		templates:     templates,
		renderer:      renderer,
		log:           log,
		sender:        sender,
		sink:          sink,
		maxConcurrent: opts.MaxConcurrent,
		sendTimeout:   opts.SendTimeout,
	}
}

// Dispatch notifies every active recipient about the lead and returns one
// delivery record per attempt, in recipient registration order.
//
// Zero active recipients is a valid no-op: it returns an empty slice, logs
// nothing to the delivery log, and emits a system event instead.
// One recipient's failure never prevents attempts to the others.
func (e *Engine) Dispatch(ctx context.Context, lead domain.LeadEvent) ([]domain.DeliveryRecord, error) {
	return e.dispatch(ctx, lead, e.registry.ListActive())
}

// DispatchTo notifies a single ad-hoc recipient, bypassing the registry.
// Used by the test-notification surface; records are logged the same way.
func (e *Engine) DispatchTo(ctx context.Context, lead domain.LeadEvent, rec domain.Recipient) ([]domain.DeliveryRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	return e.dispatch(ctx, lead, []domain.Recipient{rec})
}

func (e *Engine) dispatch(ctx context.Context, lead domain.LeadEvent, recipients []domain.Recipient) ([]domain.DeliveryRecord, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.ReceivedAt.IsZero() {
		lead.ReceivedAt = time.Now()
	}

	if e.sink != nil {
		e.sink.LeadReceived(lead)
	}

	if len(recipients) == 0 {
		logger.Warn("dispatch with zero active recipients", "lead_event_id", lead.ID, "client_name", lead.ClientName)
		if e.sink != nil {
			e.sink.SystemEvent("Nenhum destinatário ativo",
				fmt.Sprintf("Lead de %s recebido sem vendedores ativos configurados", lead.ClientName))
		}
		return []domain.DeliveryRecord{}, nil
	}

	message := e.renderer.Render(e.templates.Get(), template.LeadFields(lead))

	// Pending records are appended up front, sequentially, so the delivery
	// log keeps recipient registration order regardless of send timing.
	records := make([]domain.DeliveryRecord, len(recipients))
	for i, rcpt := range recipients {
		records[i] = domain.DeliveryRecord{
			ID:            uuid.New().String(),
			LeadEventID:   lead.ID,
			RecipientID:   rcpt.ID,
			RecipientName: rcpt.Name,
			Destination:   rcpt.Destination,
			ClientName:    lead.ClientName,
			ClientContact: lead.ClientContact,
			Product:       lead.Product,
			Timestamp:     time.Now(),
			Status:        domain.DeliveryPending,
		}
		if err := e.log.Append(ctx, records[i]); err != nil {
			// Id collisions indicate an id-generation bug; nothing sane
			// can continue from here.
			return nil, fmt.Errorf("append delivery record: %w", err)
		}
	}

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, e.maxConcurrent)
		mu  sync.Mutex
	)
	for i := range records {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resolved := e.sendOne(ctx, records[i], message)
			mu.Lock()
			records[i] = resolved
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	return records, nil
}

// sendOne performs a single provider call under the send timeout and
// resolves the pending record to its terminal status.
func (e *Engine) sendOne(ctx context.Context, rec domain.DeliveryRecord, message string) domain.DeliveryRecord {
	sendCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()

	providerRef, sendErr := e.sender.Send(sendCtx, rec.Destination, message)

	status := domain.DeliverySuccess
	reason := ""
	if sendErr != nil {
		status = domain.DeliveryFailed
		reason = sendErr.Error()
		if errors.Is(sendErr, context.DeadlineExceeded) || sendCtx.Err() == context.DeadlineExceeded {
			reason = timeoutReason
		}
		providerRef = ""
		logger.Warn("send failed",
			"record_id", rec.ID, "recipient", rec.RecipientName,
			"destination", rec.Destination, "reason", reason)
	} else {
		logger.Info("notification sent",
			"record_id", rec.ID, "recipient", rec.RecipientName,
			"destination", rec.Destination, "provider_ref", providerRef)
	}

	resolveCtx, cancelResolve := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
	defer cancelResolve()

	resolved, err := e.log.Resolve(resolveCtx, rec.ID, status, providerRef, reason)
	if err != nil {
		// The record stays pending in the log; surface the resolved state
		// to the caller anyway so the dispatch result is complete.
		logger.Error("resolve delivery record failed", "record_id", rec.ID, "error", err.Error())
		resolved = rec
		resolved.Status = status
		resolved.ProviderReference = providerRef
		resolved.ErrorReason = reason
	}

	if e.sink != nil {
		e.sink.DeliveryResolved(resolved)
	}
	return resolved
}
