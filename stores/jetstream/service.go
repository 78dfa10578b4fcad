package jetstream

import (
	"github.com/google/wire"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-contracts-go/support"
	"github.com/weegigs/wee-contracts-go/we"
)

var Live = wire.NewSet(
	Connect,
	LiveStreamName,
	DefaultStateStore,
	wire.Bind(new(we.StateStore), new(*StateStore)),
)

// Connect opens the NATS connection named by the configuration.
func Connect(cfg support.Config) (*nats.Conn, func(), error) {
	nc, err := nats.Connect(cfg.NatsURL, nats.Name(cfg.Service))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to connect to %s", cfg.NatsURL)
	}

	return nc, nc.Close, nil
}

func LiveStreamName(cfg support.Config) StreamName {
	return StreamName(cfg.JetStreamStream)
}

func DefaultStateStore(name StreamName, connection *nats.Conn) (*StateStore, error) {
	return NewStateStore(name, connection)
}
