package we

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "contract-host"

const (
	InstantiateEntry = "instantiate"
	ExecuteEntry     = "execute"
	QueryEntryName   = "query"
)

const defaultAttempts = 3

// Result is the outcome of a committed instantiate or execute call.
type Result struct {
	Revision Revision `json:"revision"`
	Response Response `json:"response"`
}

type HostOption func(host *Host)

func WithLogger(log *zerolog.Logger) HostOption {
	return func(host *Host) {
		host.log = log
	}
}

// WithAttempts bounds how often a call is run when its commit conflicts with
// a concurrent writer.
func WithAttempts(attempts uint) HostOption {
	return func(host *Host) {
		if attempts == 0 {
			attempts = 1
		}
		host.attempts = attempts
	}
}

func WithClock(clock Clock) HostOption {
	return func(host *Host) {
		host.clock = clock
	}
}

// Host runs a contract's entry points against a StateStore. Calls against the
// same instance are serialized; every state changing call commits all of its
// writes or none of them.
type Host struct {
	store      StateStore
	descriptor ContractDescriptor
	log        *zerolog.Logger
	attempts   uint
	clock      Clock
	locks      *instanceLocks
}

func NewHost(store StateStore, descriptor ContractDescriptor, options ...HostOption) *Host {
	host := &Host{
		store:      store,
		descriptor: descriptor,
		attempts:   defaultAttempts,
		locks:      newInstanceLocks(),
	}

	for _, option := range options {
		option(host)
	}

	if host.log == nil {
		host.log = &log.Logger
	}

	if host.clock == nil {
		host.clock = SystemClock
	}

	return host
}

func (h *Host) Descriptor() ContractDescriptor {
	return h.descriptor
}

func (h *Host) Instantiate(ctx context.Context, address ContractAddress, msg Data) (Result, error) {
	return h.transact(ctx, InstantiateEntry, h.descriptor.Instantiate, address, msg)
}

func (h *Host) Execute(ctx context.Context, address ContractAddress, msg Data) (Result, error) {
	return h.transact(ctx, ExecuteEntry, h.descriptor.Execute, address, msg)
}

func (h *Host) Query(ctx context.Context, address ContractAddress, msg Data) ([]byte, error) {
	ctx, span := h.start(ctx, QueryEntryName, address)
	defer span.End()

	result, err := h.query(ctx, address, msg)
	if err != nil {
		h.failed(span, QueryEntryName, address, err)
		return nil, err
	}

	return result, nil
}

func (h *Host) query(ctx context.Context, address ContractAddress, msg Data) ([]byte, error) {
	if err := address.Validate(); err != nil {
		return nil, err
	}

	if h.descriptor.Query == nil {
		return nil, EntryNotFound(h.descriptor.Name, QueryEntryName)
	}

	call, err := h.descriptor.Query.Decode(ctx, msg)
	if err != nil {
		return nil, err
	}

	state, err := h.store.Load(ctx, address)
	if err != nil {
		return nil, StorageFailure("load", address, err)
	}

	return call(ctx, h.env(address, state.Revision), NewView(state))
}

func (h *Host) transact(ctx context.Context, entry string, handler Entry, address ContractAddress, msg Data) (Result, error) {
	ctx, span := h.start(ctx, entry, address)
	defer span.End()

	result, err := h.dispatch(ctx, entry, handler, address, msg)
	if err != nil {
		h.failed(span, entry, address, err)
		return Result{}, err
	}

	span.SetAttributes(attribute.String("contract.revision", result.Revision.String()))
	h.log.Debug().
		Str("contract", h.descriptor.Name).
		Str("entry", entry).
		Str("address", address.String()).
		Str("revision", result.Revision.String()).
		Msg("call committed")

	return result, nil
}

func (h *Host) dispatch(ctx context.Context, entry string, handler Entry, address ContractAddress, msg Data) (Result, error) {
	if err := address.Validate(); err != nil {
		return Result{}, err
	}

	if handler == nil {
		return Result{}, EntryNotFound(h.descriptor.Name, entry)
	}

	call, err := handler.Decode(ctx, msg)
	if err != nil {
		return Result{}, err
	}

	unlock := h.locks.lock(address)
	defer unlock()

	var result Result
	err = retry.Do(
		func() error {
			r, err := h.run(ctx, address, call)
			if err != nil {
				return err
			}

			result = r
			return nil
		},
		retry.Attempts(h.attempts),
		retry.Delay(10*time.Millisecond),
		retry.RetryIf(IsRevisionConflict),
		retry.OnRetry(func(n uint, err error) {
			h.log.Info().
				Err(err).
				Str("entry", entry).
				Str("address", address.String()).
				Uint("attempt", n+1).
				Msg("retrying conflicting call")
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return Result{}, err
	}

	return result, nil
}

func (h *Host) run(ctx context.Context, address ContractAddress, call Call) (Result, error) {
	state, err := h.store.Load(ctx, address)
	if err != nil {
		return Result{}, StorageFailure("load", address, err)
	}

	tx := NewTransaction(state)
	response, err := call(ctx, h.env(address, state.Revision), tx)
	if err != nil {
		return Result{}, err
	}

	changes := tx.ChangeSet()
	if changes.Empty() {
		return Result{Revision: state.Revision, Response: response}, nil
	}

	revision, err := h.store.Commit(ctx, address, changes)
	if err != nil {
		if IsRevisionConflict(err) {
			return Result{}, RevisionConflict
		}

		return Result{}, StorageFailure("commit", address, err)
	}

	return Result{Revision: revision, Response: response}, nil
}

func (h *Host) env(address ContractAddress, revision Revision) Env {
	return Env{
		Contract:  address,
		Revision:  revision,
		Timestamp: TimestampFromTime(h.clock.Now()),
	}
}

func (h *Host) start(ctx context.Context, entry string, address ContractAddress) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(
		ctx,
		h.descriptor.Name+" "+entry,
		trace.WithAttributes(
			attribute.String("contract.name", h.descriptor.Name),
			attribute.String("contract.entry", entry),
			attribute.String("contract.address", address.String()),
		),
	)
}

func (h *Host) failed(span trace.Span, entry string, address ContractAddress, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	event := h.log.Debug()
	if IsStorageError(err) || IsRevisionConflict(err) {
		event = h.log.Warn()
	}

	event.
		Err(err).
		Str("contract", h.descriptor.Name).
		Str("entry", entry).
		Str("address", address.String()).
		Msg("call failed")
}

type instanceLock struct {
	sync.Mutex
	holders int
}

// instanceLocks hands out one mutex per address. An entry lives only while a
// call holds or waits for it.
type instanceLocks struct {
	lk    sync.Mutex
	locks map[ContractAddress]*instanceLock
}

func newInstanceLocks() *instanceLocks {
	return &instanceLocks{locks: make(map[ContractAddress]*instanceLock)}
}

func (l *instanceLocks) lock(address ContractAddress) func() {
	l.lk.Lock()
	instance, ok := l.locks[address]
	if !ok {
		instance = &instanceLock{}
		l.locks[address] = instance
	}
	instance.holders++
	l.lk.Unlock()

	instance.Lock()
	return func() {
		instance.Unlock()

		l.lk.Lock()
		instance.holders--
		if instance.holders == 0 {
			delete(l.locks, address)
		}
		l.lk.Unlock()
	}
}
