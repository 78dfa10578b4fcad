package counter

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-contracts-go/we"
)

type CounterHost = *we.Host

func Descriptor() we.ContractDescriptor {
	var instantiateHandler we.ExecuteFunction[InstantiateMsg] = instantiate
	var executeHandler we.ExecuteFunction[ExecuteMsg] = execute
	var queryHandler we.QueryFunction[QueryMsg, CounterResponse] = query

	return we.ContractDescriptor{
		Name:        ContractName,
		Version:     ContractVersion,
		Instantiate: instantiateHandler,
		Execute:     executeHandler,
		Query:       queryHandler,
	}
}

func NewCounterHost(store we.StateStore, logger *zerolog.Logger) CounterHost {
	return we.NewHost(store, Descriptor(), we.WithLogger(logger))
}

var Live = wire.NewSet(NewCounterHost, NewClient)
