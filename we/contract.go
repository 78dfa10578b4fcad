package we

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Env describes the instance a call runs against.
type Env struct {
	Contract  ContractAddress
	Revision  Revision
	Timestamp Timestamp
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the acknowledgement of a state changing call. The zero value is
// the default, empty response.
type Response struct {
	Data       []byte      `json:"data,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

func DefaultResponse() Response {
	return Response{}
}

func (r Response) WithAttribute(key string, value string) Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// Call is a decoded, state changing entry point invocation. It may run more
// than once when the host retries a conflicting commit.
type Call func(ctx context.Context, env Env, store Storage) (Response, error)

// QueryCall is a decoded, read-only entry point invocation.
type QueryCall func(ctx context.Context, env Env, store ReadOnlyStorage) ([]byte, error)

type Entry interface {
	Decode(ctx context.Context, msg Data) (Call, error)
}

type QueryEntry interface {
	Decode(ctx context.Context, msg Data) (QueryCall, error)
}

type ExecuteFunction[M any] func(ctx context.Context, env Env, store Storage, msg M) (Response, error)

func (f ExecuteFunction[M]) Decode(ctx context.Context, data Data) (Call, error) {
	var msg M
	if err := DecodeMessage(ctx, data, &msg); err != nil {
		return nil, err
	}

	return func(ctx context.Context, env Env, store Storage) (Response, error) {
		return f(ctx, env, store, msg)
	}, nil
}

type QueryFunction[M any, R any] func(ctx context.Context, env Env, store ReadOnlyStorage, msg M) (R, error)

func (f QueryFunction[M, R]) Decode(ctx context.Context, data Data) (QueryCall, error) {
	var msg M
	if err := DecodeMessage(ctx, data, &msg); err != nil {
		return nil, err
	}

	return func(ctx context.Context, env Env, store ReadOnlyStorage) ([]byte, error) {
		result, err := f(ctx, env, store, msg)
		if err != nil {
			return nil, err
		}

		encoded, err := json.MarshalContext(ctx, result)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode %s", NameOf(result))
		}

		return encoded, nil
	}, nil
}

// ContractDescriptor binds a contract's entry points.
type ContractDescriptor struct {
	Name        string
	Version     string
	Instantiate Entry
	Execute     Entry
	Query       QueryEntry
}
