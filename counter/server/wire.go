//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/weegigs/wee-contracts-go/counter"
	"github.com/weegigs/wee-contracts-go/stores/ds"
	"github.com/weegigs/wee-contracts-go/stores/esdbs"
	"github.com/weegigs/wee-contracts-go/stores/jetstream"
	"github.com/weegigs/wee-contracts-go/stores/memory"
	"github.com/weegigs/wee-contracts-go/support"
)

func memoryHost(cfg support.Config) (counter.CounterHost, func(), error) {
	panic(wire.Build(support.Logger, memory.Live, counter.Live))
}

func dynamoHost(ctx context.Context, cfg support.Config) (counter.CounterHost, func(), error) {
	panic(wire.Build(support.Logger, ds.Live, counter.Live))
}

func dynamoLocalHost(ctx context.Context, cfg support.Config) (counter.CounterHost, func(), error) {
	panic(wire.Build(support.Logger, ds.Local, counter.Live))
}

func jetstreamHost(cfg support.Config) (counter.CounterHost, func(), error) {
	panic(wire.Build(support.Logger, jetstream.Live, counter.Live))
}

func esdbHost(cfg support.Config) (counter.CounterHost, func(), error) {
	panic(wire.Build(support.Logger, esdbs.Live, counter.Live))
}
