package ds

import (
	"strings"

	"github.com/weegigs/wee-contracts-go/we"
)

const (
	latestSortKey = "latest-revision"
	valuePrefix   = "state#"
)

// record is any item stored under an instance's partition. Value items carry
// Value, the latest revision item carries Revision and Timestamp.
type record struct {
	PartitionKey string       `dynamodbav:"pk"`
	SortKey      string       `dynamodbav:"sk"`
	Value        []byte       `dynamodbav:"value,omitempty"`
	Revision     we.Revision  `dynamodbav:"revision,omitempty"`
	Timestamp    we.Timestamp `dynamodbav:"timestamp,omitempty"`
}

type recordKey struct {
	PartitionKey string `dynamodbav:"pk"`
	SortKey      string `dynamodbav:"sk"`
}

func partitionKey(address we.ContractAddress) string {
	return address.String()
}

func valueSortKey(key string) string {
	return strings.Join([]string{valuePrefix, key}, "")
}

func (r *record) isLatest() bool {
	return r.SortKey == latestSortKey
}

func (r *record) valueKey() (string, bool) {
	if !strings.HasPrefix(r.SortKey, valuePrefix) {
		return "", false
	}

	return strings.TrimPrefix(r.SortKey, valuePrefix), true
}

func valueRecord(address we.ContractAddress, key string, value []byte) *record {
	return &record{
		PartitionKey: partitionKey(address),
		SortKey:      valueSortKey(key),
		Value:        value,
	}
}

func latestRecord(address we.ContractAddress, revision we.Revision, timestamp we.Timestamp) *record {
	return &record{
		PartitionKey: partitionKey(address),
		SortKey:      latestSortKey,
		Revision:     revision,
		Timestamp:    timestamp,
	}
}
