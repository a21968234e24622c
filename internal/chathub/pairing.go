package chathub

import "anonpair/backend/internal/models"

// Pairing is two queue entries that will share one chat session.
type Pairing struct {
	First  models.QueueEntry
	Second models.QueueEntry
}

// PairEntries splits entries into consecutive pairs in the order given and
// returns the unpaired tail entry, if any. It does no I/O.
func PairEntries(entries []models.QueueEntry) ([]Pairing, *models.QueueEntry) {
	pairs := make([]Pairing, 0, len(entries)/2)
	for i := 0; i+1 < len(entries); i += 2 {
		pairs = append(pairs, Pairing{First: entries[i], Second: entries[i+1]})
	}
	if len(entries)%2 == 1 {
		leftover := entries[len(entries)-1]
		return pairs, &leftover
	}
	return pairs, nil
}
