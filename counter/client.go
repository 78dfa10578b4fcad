package counter

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-contracts-go/we"
)

// Client is a typed view of a counter host.
type Client struct {
	host *we.Host
}

func NewClient(host CounterHost) *Client {
	return &Client{host: host}
}

func (c *Client) Instantiate(ctx context.Context, address we.ContractAddress, msg InstantiateMsg) (we.Result, error) {
	data, err := we.MarshalToData(msg)
	if err != nil {
		return we.Result{}, err
	}

	return c.host.Instantiate(ctx, address, data)
}

func (c *Client) Execute(ctx context.Context, address we.ContractAddress, msg ExecuteMsg) (we.Result, error) {
	data, err := we.MarshalToData(msg)
	if err != nil {
		return we.Result{}, err
	}

	return c.host.Execute(ctx, address, data)
}

func (c *Client) Value(ctx context.Context, address we.ContractAddress) (uint8, error) {
	data, err := we.MarshalToData(QueryValue())
	if err != nil {
		return 0, err
	}

	result, err := c.host.Query(ctx, address, data)
	if err != nil {
		return 0, err
	}

	var response CounterResponse
	if err := json.Unmarshal(result, &response); err != nil {
		return 0, errors.Wrap(err, "failed to decode counter response")
	}

	return response.Value, nil
}
