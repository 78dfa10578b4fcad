package esdbs

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/EventStore/EventStore-Client-Go/esdb"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-contracts-go/we"
)

type StateStoreOption func(*ESDBStateStore)

const (
	defaultPageSize = 97
	streamPrefix    = "state-"
	committedEvent  = "state:committed"
)

func PageSize(size int) StateStoreOption {
	return func(es *ESDBStateStore) {
		if size <= 0 {
			size = defaultPageSize
		}

		es.pageSize = size
	}
}

func NewStateStore(client *esdb.Client, options ...StateStoreOption) *ESDBStateStore {
	store := &ESDBStateStore{
		db:       client,
		pageSize: defaultPageSize,
	}

	for _, option := range options {
		option(store)
	}

	return store
}

func DefaultStateStore(client *esdb.Client) *ESDBStateStore {
	return NewStateStore(client)
}

// ESDBStateStore appends one state:committed event per change set to a stream
// per instance. Revisions are the stream's event numbers plus one, hex encoded,
// so the first commit never collides with the initial revision.
type ESDBStateStore struct {
	db       *esdb.Client
	pageSize int
}

type committed struct {
	Writes  map[string][]byte `json:"writes,omitempty"`
	Removes []string          `json:"removes,omitempty"`
}

func streamId(address we.ContractAddress) string {
	return streamPrefix + address.String()
}

func encodeRevision(eventNumber uint64) we.Revision {
	return we.Revision(fmt.Sprintf("%026x", eventNumber+1))
}

func expectedRevision(revision we.Revision) (esdb.ExpectedRevision, error) {
	switch revision {
	case "":
		return esdb.Any{}, nil
	case we.InitialRevision:
		return esdb.NoStream{}, nil
	}

	r, err := strconv.ParseUint(revision.String(), 16, 64)
	if err != nil || r == 0 {
		return nil, errors.Errorf("invalid expected revision %q", revision)
	}

	return esdb.Revision(r - 1), nil
}

func (es *ESDBStateStore) Commit(ctx context.Context, address we.ContractAddress, changes we.ChangeSet) (we.Revision, error) {
	data, err := json.Marshal(committed{Writes: changes.Writes, Removes: changes.Removes})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal change set")
	}

	revision, err := expectedRevision(changes.ExpectedRevision)
	if err != nil {
		return "", err
	}

	result, err := es.db.AppendToStream(
		ctx,
		streamId(address),
		esdb.AppendToStreamOptions{ExpectedRevision: revision},
		esdb.EventData{
			ContentType: esdb.JsonContentType,
			EventType:   committedEvent,
			Data:        data,
		},
	)
	if err != nil {
		if errors.Is(err, esdb.ErrWrongExpectedStreamRevision) {
			return "", we.RevisionConflict
		}

		return "", errors.Wrap(err, "failed to append to stream")
	}

	return encodeRevision(result.NextExpectedVersion), nil
}

func (es *ESDBStateStore) Load(ctx context.Context, address we.ContractAddress) (we.State, error) {
	state := we.EmptyState(address)

	var position esdb.StreamPosition = esdb.Start{}
	for {
		count, last, err := es.read(ctx, &state, position)
		if err != nil {
			return we.State{}, err
		}

		if count < es.pageSize {
			break
		}

		position = last
	}

	return state, nil
}

func (es *ESDBStateStore) read(ctx context.Context, state *we.State, from esdb.StreamPosition) (int, esdb.StreamPosition, error) {
	if revision, ok := from.(esdb.StreamRevision); ok {
		from = esdb.StreamRevision{
			Value: revision.Value + 1,
		}
	}

	stream, err := es.db.ReadStream(
		ctx, streamId(state.Address), esdb.ReadStreamOptions{
			From: from,
		}, uint64(es.pageSize),
	)
	if err != nil {
		if isEndOfStream(err) {
			return 0, esdb.End{}, nil
		}

		return 0, esdb.End{}, errors.Wrap(err, "failed to read stream")
	}
	defer stream.Close()

	var count int
	var last esdb.StreamPosition = esdb.End{}
	for {
		event, err := stream.Recv()
		if isEndOfStream(err) {
			break
		}

		if err != nil {
			return 0, esdb.End{}, errors.Wrap(err, "failed to read event")
		}

		e := event.OriginalEvent()
		if e.EventType != committedEvent {
			return 0, esdb.End{}, errors.Errorf("unexpected event type %s in %s", e.EventType, streamId(state.Address))
		}

		var changes committed
		if err := json.Unmarshal(e.Data, &changes); err != nil {
			return 0, esdb.End{}, errors.Wrapf(err, "failed to unmarshal change set %d", e.EventNumber)
		}

		state.Values = we.ChangeSet{Writes: changes.Writes, Removes: changes.Removes}.Apply(state.Values)
		state.Revision = encodeRevision(e.EventNumber)

		count++
		last = esdb.Revision(e.EventNumber)
	}

	return count, last, nil
}

func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, esdb.ErrStreamNotFound)
}
