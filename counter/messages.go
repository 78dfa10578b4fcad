package counter

import (
	we "github.com/weegigs/wee-contracts-go/we"
)

// InstantiateMsg is {"zero":{}} or {"set":{"value":n}}.
type InstantiateMsg struct {
	Zero *Zero `json:"zero,omitempty"`
	Set  *Set  `json:"set,omitempty"`
}

func (m InstantiateMsg) Variant() (string, error) {
	return we.SelectVariant(m)
}

// ExecuteMsg is {"inc":{}}, {"dec":{}} or {"set":{"value":n}}.
type ExecuteMsg struct {
	Inc *Inc `json:"inc,omitempty"`
	Dec *Dec `json:"dec,omitempty"`
	Set *Set `json:"set,omitempty"`
}

func (m ExecuteMsg) Variant() (string, error) {
	return we.SelectVariant(m)
}

// QueryMsg is {"value":{}}.
type QueryMsg struct {
	Value *ReadValue `json:"value,omitempty"`
}

func (m QueryMsg) Variant() (string, error) {
	return we.SelectVariant(m)
}

type Zero struct{}

type Inc struct{}

type Dec struct{}

type ReadValue struct{}

type Set struct {
	Value uint8 `json:"value"`
}

type CounterResponse struct {
	Value uint8 `json:"value"`
}

func InstantiateZero() InstantiateMsg {
	return InstantiateMsg{Zero: &Zero{}}
}

func InstantiateSetTo(value uint8) InstantiateMsg {
	return InstantiateMsg{Set: &Set{Value: value}}
}

func Increment() ExecuteMsg {
	return ExecuteMsg{Inc: &Inc{}}
}

func Decrement() ExecuteMsg {
	return ExecuteMsg{Dec: &Dec{}}
}

func SetTo(value uint8) ExecuteMsg {
	return ExecuteMsg{Set: &Set{Value: value}}
}

func QueryValue() QueryMsg {
	return QueryMsg{Value: &ReadValue{}}
}
