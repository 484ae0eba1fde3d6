package matcher

import (
	"ledgermatch/internal/models"
)

// rightIndex provides keyed access to the right-side transactions while
// tracking which of them have already been paired. Consumption is tracked
// per record (not per key) so duplicate transaction numbers each pair at
// most once and the partition property holds.
type rightIndex struct {
	// byNumber maps transaction numbers to right-side records sharing them,
	// in input order.
	byNumber map[string][]*models.Transaction

	// byReference maps non-empty references to right-side records sharing
	// them, in input order.
	byReference map[string][]*models.Transaction

	// all holds the indexed records in input order.
	all []*models.Transaction

	// consumed marks records that have already been paired.
	consumed map[*models.Transaction]bool
}

// newRightIndex builds the keyed lookups over the right side.
func newRightIndex(transactions []*models.Transaction) *rightIndex {
	idx := &rightIndex{
		byNumber:    make(map[string][]*models.Transaction),
		byReference: make(map[string][]*models.Transaction),
		all:         transactions,
		consumed:    make(map[*models.Transaction]bool),
	}

	for _, tx := range transactions {
		if tx.TransactionNumber != "" {
			idx.byNumber[tx.TransactionNumber] = append(idx.byNumber[tx.TransactionNumber], tx)
		}
		if tx.Reference != "" {
			idx.byReference[tx.Reference] = append(idx.byReference[tx.Reference], tx)
		}
	}

	return idx
}

// takeByNumber returns the earliest unconsumed record with the given
// transaction number and consumes it, or nil when none remains.
func (idx *rightIndex) takeByNumber(number string) *models.Transaction {
	for _, tx := range idx.byNumber[number] {
		if !idx.consumed[tx] {
			idx.consumed[tx] = true
			return tx
		}
	}
	return nil
}

// candidates returns the unconsumed right-side records sharing the left
// record's transaction number or non-empty reference, deduplicated, in
// right-side input order.
func (idx *rightIndex) candidates(left *models.Transaction) []*models.Transaction {
	var out []*models.Transaction
	seen := make(map[*models.Transaction]bool)

	collect := func(txs []*models.Transaction) {
		for _, tx := range txs {
			if idx.consumed[tx] || seen[tx] {
				continue
			}
			seen[tx] = true
			out = append(out, tx)
		}
	}

	if left.TransactionNumber != "" {
		collect(idx.byNumber[left.TransactionNumber])
	}
	if left.Reference != "" {
		collect(idx.byReference[left.Reference])
	}

	if len(out) < 2 {
		return out
	}

	// Records reachable through both keys must keep a single, stable order.
	ordered := make([]*models.Transaction, 0, len(out))
	for _, tx := range idx.all {
		if seen[tx] {
			ordered = append(ordered, tx)
		}
	}
	return ordered
}

// consume marks a record as paired.
func (idx *rightIndex) consume(tx *models.Transaction) {
	idx.consumed[tx] = true
}

// remaining returns the unconsumed records in input order.
func (idx *rightIndex) remaining() []*models.Transaction {
	var out []*models.Transaction
	for _, tx := range idx.all {
		if !idx.consumed[tx] {
			out = append(out, tx)
		}
	}
	return out
}
