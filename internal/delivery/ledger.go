package delivery

// Ledger keeps at most one answer per question number in first-recorded
// order. It is not safe for concurrent use; Session guards it.
type Ledger struct {
	entries []Answer
	index   map[int]int
}

func NewLedger() *Ledger {
	return &Ledger{index: make(map[int]int)}
}

// Record inserts the answer or replaces the existing one for the same
// question number in place. The whole record is replaced, never merged.
func (l *Ledger) Record(a Answer) {
	if l.index == nil {
		l.index = make(map[int]int)
	}
	if i, ok := l.index[a.QuestionNumber()]; ok {
		l.entries[i] = a
		return
	}
	l.index[a.QuestionNumber()] = len(l.entries)
	l.entries = append(l.entries, a)
}

func (l *Ledger) Get(number int) (Answer, bool) {
	i, ok := l.index[number]
	if !ok {
		return nil, false
	}
	return l.entries[i], true
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the ledger in ledger order.
func (l *Ledger) Entries() []Answer {
	out := make([]Answer, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Reset() {
	l.entries = nil
	l.index = make(map[int]int)
}
