package jetstream

import "github.com/weegigs/wee-contracts-go/we"

// ChangeSetRecord is the message published for every committed change set.
type ChangeSetRecord struct {
	Address we.ContractAddress `json:"address"`
	Writes  map[string][]byte  `json:"writes,omitempty"`
	Removes []string           `json:"removes,omitempty"`
}

func recordOf(address we.ContractAddress, changes we.ChangeSet) ChangeSetRecord {
	return ChangeSetRecord{Address: address, Writes: changes.Writes, Removes: changes.Removes}
}

func (r ChangeSetRecord) changes() we.ChangeSet {
	return we.ChangeSet{Writes: r.Writes, Removes: r.Removes}
}
