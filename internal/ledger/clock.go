package ledger

import (
	"time"

	"docledger/internal/ids"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// TxIDGenerator produces the transaction reference attached to every call.
type TxIDGenerator interface {
	New() string
}

// ULIDGenerator produces monotonic ULIDs, so journal order matches id order.
type ULIDGenerator struct{}

func (ULIDGenerator) New() string { return ids.New() }
