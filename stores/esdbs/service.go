package esdbs

import (
	"github.com/google/wire"

	"github.com/weegigs/wee-contracts-go/we"
)

var Live = wire.NewSet(
	Connect,
	DefaultStateStore,
	wire.Bind(new(we.StateStore), new(*ESDBStateStore)),
)
