package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/safar/chat-storefront/internal/lock"
	"go.uber.org/zap"
)

type Service struct {
	backend        Backend
	locker         Locker
	publisher      Publisher
	paymentMethods map[string]struct{}
	logger         *zap.Logger
}

type Option func(*Service)

// WithLocker replaces the default in-process per-user lock.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService builds the cart and checkout workflow. paymentMethods is the
// accepted set, compared case-insensitively.
func NewService(backend Backend, paymentMethods []string, opts ...Option) *Service {
	s := &Service{
		backend:        backend,
		locker:         lock.NewLocal(),
		paymentMethods: make(map[string]struct{}, len(paymentMethods)),
		logger:         zap.NewNop(),
	}
	for _, m := range paymentMethods {
		s.paymentMethods[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PaymentMethods lists the accepted payment method names in sorted order.
func (s *Service) PaymentMethods() []string {
	out := make([]string, 0, len(s.paymentMethods))
	for m := range s.paymentMethods {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func (s *Service) normalizePaymentMethod(method string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(method))
	if _, ok := s.paymentMethods[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}
	return m, nil
}

func (s *Service) transactional() bool {
	_, ok := s.backend.(Transactor)
	return ok
}

// withUserLock runs fn while holding the user's lock, inside a transaction
// when the backend supports one.
func (s *Service) withUserLock(ctx context.Context, userID int64, fn func(Backend) error) error {
	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backendErr("acquire user lock", ctxErr)
		}
		if errors.Is(err, lock.ErrNotAcquired) {
			return fmt.Errorf("%w: %w", ErrConcurrentCheckout, err)
		}
		return backendErr("acquire user lock", err)
	}
	defer unlock()

	if tx, ok := s.backend.(Transactor); ok {
		return backendErr("transaction", tx.WithinTx(ctx, fn))
	}
	return fn(s.backend)
}
