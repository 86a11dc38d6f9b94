// Package payment owns the lifecycle of a hosted-payment attempt: from
// initialization, through the user's interaction with the provider page,
// to the verified terminal outcome. The phase machine consumes classified
// navigation events, so the event source stays swappable and the
// transitions stay testable with synthetic events.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/gateway"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/repository"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/settlement"
)

type OutcomeKind string

const (
	// OutcomeNone: nothing matched, session stays where it was.
	OutcomeNone OutcomeKind = "NONE"
	// OutcomeIgnored: stale-session or duplicate event, dropped on purpose.
	OutcomeIgnored OutcomeKind = "IGNORED"
	// OutcomeSucceeded: payment verified, session terminal.
	OutcomeSucceeded OutcomeKind = "SUCCEEDED"
	// OutcomeDenied: provider explicitly declined, session terminal.
	OutcomeDenied OutcomeKind = "DENIED"
	// OutcomeRetryVerification: verification could not be confirmed yet,
	// session stays in Verifying and the user may retry.
	OutcomeRetryVerification OutcomeKind = "RETRY_VERIFICATION"
	// OutcomeUnconfirmed: verification retry budget exhausted, session
	// terminal with a contact-support message.
	OutcomeUnconfirmed OutcomeKind = "UNCONFIRMED"
	// OutcomeCancelPrompt: the hosted page reported a cancellation; the
	// user chooses between retrying in place and abandoning.
	OutcomeCancelPrompt OutcomeKind = "CANCEL_PROMPT"
)

type Outcome struct {
	Kind OutcomeKind
	// Order is the backend's updated order on a successful settlement.
	Order *domain.Order
}

// UserMessage maps an outcome to the user-facing text, distinguishing
// retryable from terminal results.
func UserMessage(kind OutcomeKind) string {
	switch kind {
	case OutcomeSucceeded:
		return "Payment confirmed."
	case OutcomeDenied:
		return "Payment was declined. Please try a different payment method."
	case OutcomeRetryVerification:
		return "We could not confirm your payment yet. Please try again."
	case OutcomeUnconfirmed:
		return "We could not confirm your payment. Please contact support."
	case OutcomeCancelPrompt:
		return "Payment was cancelled. Retry or abandon?"
	default:
		return ""
	}
}

type Gateway interface {
	InitializePayment(ctx context.Context, req *gateway.InitializePaymentRequest) (*gateway.InitializePaymentResponse, error)
}

type Verifier interface {
	Verify(ctx context.Context, reference string) (settlement.Result, error)
}

type Controller struct {
	store            repository.SessionStore
	gw               Gateway
	verifier         Verifier
	maxVerifyRetries int
}

func NewController(store repository.SessionStore, gw Gateway, verifier Verifier, maxVerifyRetries int) *Controller {
	if maxVerifyRetries < 1 {
		maxVerifyRetries = 1
	}
	return &Controller{
		store:            store,
		gw:               gw,
		verifier:         verifier,
		maxVerifyRetries: maxVerifyRetries,
	}
}

// Start opens a new payment session for the order. Any prior live session
// for the same order is superseded and its later events will be ignored.
func (c *Controller) Start(ctx context.Context, orderID string, amount decimal.Decimal, currency, payerEmail string) (*domain.PaymentSession, error) {
	session := &domain.PaymentSession{
		ID:       uuid.New(),
		OrderID:  orderID,
		Phase:    domain.PhaseIdle,
		Amount:   amount,
		Currency: currency,
	}

	if err := c.transition(ctx, session, domain.PhaseInitializing, true); err != nil {
		return nil, err
	}

	resp, err := c.gw.InitializePayment(ctx, &gateway.InitializePaymentRequest{
		Amount:  amount.StringFixed(2),
		Email:   payerEmail,
		OrderID: orderID,
	})
	if err != nil {
		if e2 := c.transition(ctx, session, domain.PhaseFailed, false); e2 != nil {
			log.Printf("failed to mark session %s failed: %v", session.ID, e2)
		}
		return nil, fmt.Errorf("%w: %v", ErrInitializationFailed, err)
	}

	session.Reference = resp.Reference
	session.AuthorizationURL = resp.AuthorizationURL
	if err := c.transition(ctx, session, domain.PhaseAwaitingUserAction, false); err != nil {
		return nil, err
	}

	return session, nil
}

// HandleEvent applies one classified navigation event to the event's
// session. Transition application is idempotent: duplicate success events
// while already Verifying or terminal are no-ops.
func (c *Controller) HandleEvent(ctx context.Context, event NavigationEvent) (Outcome, error) {
	session, err := c.store.GetSession(ctx, event.SessionID)
	if err != nil {
		return Outcome{Kind: OutcomeIgnored}, fmt.Errorf("load session: %w", err)
	}

	// stale-session guard: compare session identity, not just order id
	active, err := c.store.ActiveSessionForOrder(ctx, session.OrderID)
	if err == nil && active.ID != session.ID {
		log.Printf("ignoring event for stale session %s (active is %s)", session.ID, active.ID)
		return Outcome{Kind: OutcomeIgnored}, nil
	}

	classification := Classify(event.URL)
	switch classification.Kind {
	case EventKindSuccess:
		return c.beginVerification(ctx, session, classification.Reference)
	case EventKindCancel:
		if session.Phase != domain.PhaseAwaitingUserAction {
			return Outcome{Kind: OutcomeIgnored}, nil
		}
		return Outcome{Kind: OutcomeCancelPrompt}, nil
	default:
		return Outcome{Kind: OutcomeNone}, nil
	}
}

// Consume drains classified navigation events for a session until one of
// them demands a caller decision or the context ends.
func (c *Controller) Consume(ctx context.Context, events <-chan NavigationEvent) (Outcome, error) {
	for {
		select {
		case <-ctx.Done():
			return Outcome{Kind: OutcomeNone}, ctx.Err()
		case event, ok := <-events:
			if !ok {
				return Outcome{Kind: OutcomeNone}, nil
			}
			outcome, err := c.HandleEvent(ctx, event)
			if err != nil {
				if errors.Is(err, ErrInvalidStateTransition) {
					log.Printf("dropping event after invalid transition: %v", err)
					continue
				}
				return outcome, err
			}
			if outcome.Kind != OutcomeNone && outcome.Kind != OutcomeIgnored {
				return outcome, nil
			}
		}
	}
}

func (c *Controller) beginVerification(ctx context.Context, session *domain.PaymentSession, urlReference string) (Outcome, error) {
	switch session.Phase {
	case domain.PhaseVerifying, domain.PhaseSucceeded:
		// duplicate success event for a transition already applied
		return Outcome{Kind: OutcomeIgnored}, nil
	case domain.PhaseCancelled, domain.PhaseFailed:
		return Outcome{Kind: OutcomeIgnored}, nil
	case domain.PhaseAwaitingUserAction:
	default:
		// verification before initialization returned a reference is a
		// programming error, never a runtime race
		return Outcome{}, fmt.Errorf("%w: cannot verify from %s", ErrInvalidStateTransition, session.Phase)
	}

	// prefer the reference carried by the URL, fall back to the one stored
	// at initialization
	if urlReference != "" {
		session.Reference = urlReference
	}

	if err := c.transition(ctx, session, domain.PhaseVerifying, false); err != nil {
		return Outcome{}, err
	}

	return c.runVerification(ctx, session)
}

// RetryVerification re-runs verification for a session that timed out while
// Verifying.
func (c *Controller) RetryVerification(ctx context.Context, sessionID uuid.UUID) (Outcome, error) {
	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load session: %w", err)
	}
	if session.Phase != domain.PhaseVerifying {
		return Outcome{}, fmt.Errorf("%w: cannot retry verification from %s", ErrInvalidStateTransition, session.Phase)
	}
	return c.runVerification(ctx, session)
}

func (c *Controller) runVerification(ctx context.Context, session *domain.PaymentSession) (Outcome, error) {
	result, err := c.verifier.Verify(ctx, session.Reference)
	switch {
	case err == nil:
		if e2 := c.transition(ctx, session, domain.PhaseSucceeded, false); e2 != nil {
			return Outcome{}, e2
		}
		return Outcome{Kind: OutcomeSucceeded, Order: result.Order}, nil

	case errors.Is(err, settlement.ErrVerificationDenied):
		if e2 := c.transition(ctx, session, domain.PhaseFailed, false); e2 != nil {
			return Outcome{}, e2
		}
		return Outcome{Kind: OutcomeDenied, Order: result.Order}, nil

	case errors.Is(err, settlement.ErrVerificationTimeout):
		session.VerifyAttempts++
		if session.VerifyAttempts >= c.maxVerifyRetries {
			if e2 := c.transition(ctx, session, domain.PhaseFailed, false); e2 != nil {
				return Outcome{}, e2
			}
			return Outcome{Kind: OutcomeUnconfirmed}, nil
		}
		if e2 := c.store.UpdateSession(ctx, session); e2 != nil {
			return Outcome{}, fmt.Errorf("persist verify attempts: %w", e2)
		}
		return Outcome{Kind: OutcomeRetryVerification}, nil

	default:
		return Outcome{}, fmt.Errorf("verify session %s: %w", session.ID, err)
	}
}

// Abandon discards an in-flight session. The order is left untouched
// (pending/pending) so a later retry with a fresh session stays possible.
func (c *Controller) Abandon(ctx context.Context, sessionID uuid.UUID, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session.Phase.IsTerminal() {
		return nil
	}
	if session.Phase != domain.PhaseAwaitingUserAction && session.Phase != domain.PhaseVerifying {
		return fmt.Errorf("%w: cannot abandon from %s", ErrInvalidStateTransition, session.Phase)
	}

	return c.transition(ctx, session, domain.PhaseCancelled, false)
}

// RetryLoad supports re-loading a hosted page that failed to render. The
// session keeps its reference and URL; no phase changes.
func (c *Controller) RetryLoad(ctx context.Context, sessionID uuid.UUID) (url, reference string, err error) {
	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return "", "", fmt.Errorf("load session: %w", err)
	}
	if session.Phase.IsTerminal() || session.AuthorizationURL == "" {
		return "", "", fmt.Errorf("%w: no page to reload from %s", ErrInvalidStateTransition, session.Phase)
	}
	return session.AuthorizationURL, session.Reference, nil
}

func (c *Controller) transition(ctx context.Context, session *domain.PaymentSession, next domain.PaymentPhase, create bool) error {
	if !session.Phase.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, session.Phase, next)
	}
	session.Phase = next

	if create {
		if err := c.store.CreateSession(ctx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	}
	if err := c.store.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("persist phase %s: %w", next, err)
	}
	return nil
}
