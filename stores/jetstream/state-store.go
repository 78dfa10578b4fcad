package jetstream

import (
	"context"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-contracts-go/internal"
	"github.com/weegigs/wee-contracts-go/we"
)

type StateStoreOption func(*StateStore)

const prefix = "state."

type StreamName string

func (name StreamName) String() string {
	return string(name)
}

// StateStore records every committed change set on a JetStream stream, one
// subject per instance. Loading replays the instance's subject. Revisions
// carry the stream sequence so commits can be made conditional with
// ExpectLastSequencePerSubject.
type StateStore struct {
	name       string
	manager    nats.JetStreamManager
	stream     nats.JetStream
	marshaller Marshaller
}

func NewStateStore(name StreamName, connection *nats.Conn, options ...StateStoreOption) (*StateStore, error) {
	stream, err := connection.JetStream()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open jetstream context")
	}

	_, err = stream.AddStream(&nats.StreamConfig{
		Name:        name.String(),
		Description: "contract state change sets for " + name.String(),
		Subjects:    []string{prefix + ">"},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to provision stream %s", name)
	}

	store := &StateStore{
		name:    name.String(),
		manager: stream,
		stream:  stream,
	}

	for _, option := range options {
		option(store)
	}

	if store.marshaller == nil {
		store.marshaller = JSONMarshaller{}
	}

	return store, nil
}

func subject(address we.ContractAddress) string {
	return prefix + address.String()
}

func (es *StateStore) Commit(ctx context.Context, address we.ContractAddress, changes we.ChangeSet) (we.Revision, error) {
	bytes, err := es.marshaller.Marshal(recordOf(address, changes))
	if err != nil {
		return "", err
	}

	msg := nats.NewMsg(subject(address))
	msg.Data = bytes

	expected := changes.ExpectedRevision
	if expected != "" {
		var sequenceNumber uint64
		if expected != we.InitialRevision {
			sequenceNumber, err = internal.DecodeSequenceNumber(expected)
			if err != nil {
				return "", err
			}
		}

		msg.Header.Set(nats.ExpectedLastSubjSeqHdr, strconv.FormatUint(sequenceNumber, 10))
	}

	ack, err := es.stream.PublishMsg(msg, nats.Context(ctx))
	if err != nil {
		if isWrongLastSequence(err) {
			return "", we.RevisionConflict
		}
		return "", err
	}

	stored, err := es.manager.GetMsg(es.name, ack.Sequence, nats.Context(ctx))
	if err != nil {
		return "", errors.Wrapf(err, "failed to read back change set %d", ack.Sequence)
	}

	return internal.EncodeRevision(ulid.Timestamp(stored.Time), ack.Sequence, 0)
}

func isWrongLastSequence(err error) bool {
	var api *nats.APIError
	if errors.As(err, &api) {
		return api.ErrorCode == nats.JSErrCodeStreamWrongLastSequence
	}

	return strings.Contains(err.Error(), "wrong last sequence")
}

func (es *StateStore) Load(ctx context.Context, address we.ContractAddress) (we.State, error) {
	state := we.EmptyState(address)

	latest, err := es.latest(ctx, subject(address))
	if err != nil {
		return we.State{}, err
	}

	if latest == nil {
		return state, nil
	}

	subscription, err := es.stream.SubscribeSync(subject(address), nats.DeliverAll(), nats.OrderedConsumer())
	if err != nil {
		return we.State{}, err
	}
	defer func(subscription *nats.Subscription) {
		err := subscription.Unsubscribe()
		if err != nil {
			log.Err(err).Msg("ephemeral stream subscription failed to unsubscribe cleanly")
		}
	}(subscription)

	for {
		msg, err := subscription.NextMsgWithContext(ctx)
		if err != nil {
			return we.State{}, err
		}

		metadata, err := msg.Metadata()
		if err != nil {
			return we.State{}, err
		}

		record := ChangeSetRecord{}
		if err := es.marshaller.Unmarshal(msg.Data, &record); err != nil {
			return we.State{}, errors.Wrapf(err, "failed to decode change set %d", metadata.Sequence.Stream)
		}

		state.Values = record.changes().Apply(state.Values)
		state.Revision, err = internal.EncodeRevision(ulid.Timestamp(metadata.Timestamp), metadata.Sequence.Stream, 0)
		if err != nil {
			return we.State{}, err
		}

		if metadata.Sequence.Stream >= *latest {
			break
		}
	}

	return state, nil
}

func (es *StateStore) latest(ctx context.Context, subject string) (*uint64, error) {
	msg, err := es.manager.GetLastMsg(es.name, subject, nats.Context(ctx))
	if err != nil {
		if errors.Is(err, nats.ErrMsgNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &msg.Sequence, nil
}
