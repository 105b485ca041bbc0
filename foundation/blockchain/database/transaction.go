package database

import (
	"fmt"
	"strconv"
	"time"
)

// Transaction is the record of a value transfer between two parties. The
// JSON names are part of the peer wire contract and of the block hash.
type Transaction struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Amount    uint64  `json:"amount"`
	TimeStamp float64 `json:"timestamp"`
	Signature string  `json:"signature"`
}

// NewTransaction constructs a new transaction.
func NewTransaction(sender string, recipient string, amount uint64, timeStamp float64, signature string) Transaction {
	return Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		TimeStamp: timeStamp,
		Signature: signature,
	}
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	return fmt.Sprintf("%s->%s:%d", tx.Sender, tx.Recipient, tx.Amount)
}

// =============================================================================

// Now returns the current time as unix seconds.
func Now() float64 {
	return TimeStamp(time.Now())
}

// TimeStamp converts the time to unix seconds with a fractional part.
func TimeStamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// TimeStampString returns the text form of a timestamp. This is the message
// that gets signed for a transaction.
func TimeStampString(timeStamp float64) string {
	return strconv.FormatFloat(timeStamp, 'f', -1, 64)
}
