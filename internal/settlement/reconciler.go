// Package settlement confirms payment references against the backend and
// resolves them to a terminal outcome. Verification is idempotent: once a
// reference resolves, repeat calls return the cached outcome without
// touching the network again.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/events"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/gateway"
)

var (
	// ErrVerificationDenied means the provider explicitly declined the
	// payment. Terminal, never retried.
	ErrVerificationDenied = errors.New("payment verification denied by provider")
	// ErrVerificationTimeout means the verification call could not reach a
	// conclusion within the retry budget. Retryable by the caller.
	ErrVerificationTimeout = errors.New("payment verification timed out")
	// ErrInvalidReference marks a verify call without a usable reference, a
	// caller defect that retrying cannot cure.
	ErrInvalidReference = errors.New("invalid payment reference")
)

// Result is the settled outcome for a reference.
type Result struct {
	Reference     string
	PaymentStatus domain.PaymentStatus
	// Order is the backend's updated order, when it returned one.
	Order *domain.Order
}

type Gateway interface {
	VerifyPayment(ctx context.Context, reference string) (*gateway.VerifyPaymentResponse, error)
}

type Publisher interface {
	PublishSettlement(ctx context.Context, event events.SettlementEvent) error
}

type Reconciler struct {
	gw          Gateway
	publisher   Publisher
	maxAttempts int
	backoff     time.Duration

	mu       sync.Mutex
	resolved map[string]Result
}

func NewReconciler(gw Gateway, publisher Publisher, maxAttempts int, backoff time.Duration) *Reconciler {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Reconciler{
		gw:          gw,
		publisher:   publisher,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		resolved:    make(map[string]Result),
	}
}

// Verify resolves a payment reference. Network failures are retried with
// backoff up to the attempt budget and then surface as ErrVerificationTimeout;
// an explicit "failed" from the provider is terminal and returns
// ErrVerificationDenied alongside the failed result.
func (r *Reconciler) Verify(ctx context.Context, reference string) (Result, error) {
	if reference == "" {
		return Result{}, fmt.Errorf("%w: empty reference", ErrInvalidReference)
	}

	r.mu.Lock()
	if cached, ok := r.resolved[reference]; ok {
		r.mu.Unlock()
		if cached.PaymentStatus == domain.PaymentStatusFailed {
			return cached, ErrVerificationDenied
		}
		return cached, nil
	}
	r.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		resp, err := r.gw.VerifyPayment(ctx, reference)
		if err != nil {
			if !errors.Is(err, gateway.ErrNetwork) {
				return Result{}, fmt.Errorf("verify payment %s: %w", reference, err)
			}
			lastErr = err
			log.Printf("verification attempt %d/%d for %s failed: %v", attempt, r.maxAttempts, reference, err)
			if attempt < r.maxAttempts {
				select {
				case <-time.After(r.backoff * time.Duration(attempt)):
				case <-ctx.Done():
					return Result{}, fmt.Errorf("%w: %v", ErrVerificationTimeout, ctx.Err())
				}
			}
			continue
		}

		result := Result{
			Reference: reference,
			Order:     resp.Order,
		}
		switch resp.Status {
		case "paid":
			result.PaymentStatus = domain.PaymentStatusPaid
		default:
			result.PaymentStatus = domain.PaymentStatusFailed
		}

		r.settle(ctx, result)

		if result.PaymentStatus == domain.PaymentStatusFailed {
			return result, ErrVerificationDenied
		}
		return result, nil
	}

	return Result{}, fmt.Errorf("%w after %d attempts: %v", ErrVerificationTimeout, r.maxAttempts, lastErr)
}

// settle caches the terminal outcome and notifies downstream once. Publish
// errors are logged, never propagated: the settlement itself already
// happened on the backend.
func (r *Reconciler) settle(ctx context.Context, result Result) {
	r.mu.Lock()
	if _, ok := r.resolved[result.Reference]; ok {
		r.mu.Unlock()
		return
	}
	r.resolved[result.Reference] = result
	r.mu.Unlock()

	if r.publisher == nil {
		return
	}

	event := events.SettlementEvent{
		Reference: result.Reference,
		Outcome:   result.PaymentStatus.String(),
		SettledAt: time.Now(),
	}
	if result.Order != nil {
		event.OrderID = result.Order.ID
		event.Amount = result.Order.TotalAmount.StringFixed(2)
	}

	if err := r.publisher.PublishSettlement(ctx, event); err != nil {
		log.Printf("failed to publish settlement for %s: %v", result.Reference, err)
	}
}
