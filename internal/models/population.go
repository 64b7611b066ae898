package models

// Population is every registered account keyed by username. It is the
// in-memory form of the single durable user file.
type Population map[string]*Account

// Clone returns a deep copy of the entire population.
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for name, acct := range p {
		out[name] = acct.Clone()
	}
	return out
}
