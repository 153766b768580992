package review

// Vote is one voter's opinion of a review.
type Vote struct {
	VoterID string `json:"voter_id"`
	Helpful bool   `json:"helpful"`
}

// VoteLedger holds at most one vote per voter. Counts are computed by
// scanning the entries and never stored.
type VoteLedger []Vote

// Upsert replaces the voter's existing entry or appends a new one.
func (l VoteLedger) Upsert(voterID string, helpful bool) VoteLedger {
	for i := range l {
		if l[i].VoterID == voterID {
			l[i].Helpful = helpful
			return l
		}
	}
	return append(l, Vote{VoterID: voterID, Helpful: helpful})
}

func (l VoteLedger) Helpful() int {
	n := 0
	for _, v := range l {
		if v.Helpful {
			n++
		}
	}
	return n
}

func (l VoteLedger) NotHelpful() int {
	n := 0
	for _, v := range l {
		if !v.Helpful {
			n++
		}
	}
	return n
}

// VoteOf reports the voter's current vote, if any.
func (l VoteLedger) VoteOf(voterID string) (helpful bool, ok bool) {
	for _, v := range l {
		if v.VoterID == voterID {
			return v.Helpful, true
		}
	}
	return false, false
}
