package counter

import (
	"context"

	we "github.com/weegigs/wee-contracts-go/we"
)

const (
	ContractName    = "counter"
	ContractVersion = "0.1.0"
)

var Value = we.NewItem[uint8]("value")

func instantiate(ctx context.Context, _ we.Env, store we.Storage, msg InstantiateMsg) (we.Response, error) {
	var value uint8
	if msg.Set != nil {
		value = msg.Set.Value
	}

	if err := Value.Save(ctx, store, value); err != nil {
		return we.Response{}, err
	}

	return we.DefaultResponse(), nil
}

func execute(ctx context.Context, _ we.Env, store we.Storage, msg ExecuteMsg) (we.Response, error) {
	_, err := Value.Update(ctx, store, func(current uint8) (uint8, error) {
		switch {
		case msg.Inc != nil:
			return SaturatingIncrement(current), nil
		case msg.Dec != nil:
			return SaturatingDecrement(current), nil
		default:
			return msg.Set.Value, nil
		}
	})
	if err != nil {
		return we.Response{}, err
	}

	return we.DefaultResponse(), nil
}

func query(ctx context.Context, _ we.Env, store we.ReadOnlyStorage, _ QueryMsg) (CounterResponse, error) {
	value, err := Value.Load(ctx, store)
	if err != nil {
		return CounterResponse{}, err
	}

	return CounterResponse{Value: value}, nil
}

func SaturatingIncrement(value uint8) uint8 {
	if value == 255 {
		return value
	}

	return value + 1
}

func SaturatingDecrement(value uint8) uint8 {
	if value == 0 {
		return value
	}

	return value - 1
}
