package domain

import "sort"

// Registry mapea cuentas a su AddressLedger. Los ledgers se crean al primer trade
// de cada cuenta y viven lo que dura la ejecución. La iteración sigue el orden
// de primera aparición para que las sumas entre ledgers sean reproducibles.
type Registry struct {
	byAddr map[string]*AddressLedger
	order  []string
}

// NewRegistry crea un registry vacío.
func NewRegistry() *Registry {
	return &Registry{byAddr: make(map[string]*AddressLedger)}
}

// Ledger devuelve el ledger de addr, creándolo si no existe.
func (r *Registry) Ledger(addr string) *AddressLedger {
	if l, ok := r.byAddr[addr]; ok {
		return l
	}
	l := NewAddressLedger()
	r.byAddr[addr] = l
	r.order = append(r.order, addr)
	return l
}

// Lookup devuelve el ledger de addr sin crearlo.
func (r *Registry) Lookup(addr string) (*AddressLedger, bool) {
	l, ok := r.byAddr[addr]
	return l, ok
}

// Len devuelve el número de cuentas rastreadas.
func (r *Registry) Len() int { return len(r.order) }

// OpenInterest suma el open interest de todas las cuentas.
func (r *Registry) OpenInterest() float64 {
	var total float64
	for _, addr := range r.order {
		total += r.byAddr[addr].OpenInterest()
	}
	return total
}

// UnrealizedPnL suma el PnL no realizado de todas las cuentas al precio dado.
func (r *Registry) UnrealizedPnL(price float64) float64 {
	var total float64
	for _, addr := range r.order {
		total += r.byAddr[addr].UnrealizedPnL(price)
	}
	return total
}

// AccountSummary es la foto final de una cuenta.
type AccountSummary struct {
	Address          string
	Trades           uint64
	Won              uint64
	Lost             uint64
	OpenPositions    int
	OpenInterest     float64
	UnrealizedPnL    float64
	RealizedInternal float64
	RealizedExternal float64
}

// Summaries devuelve una foto de cada cuenta valorada a price, ordenada por
// PnL interno realizado descendente (empates por dirección).
func (r *Registry) Summaries(price float64) []AccountSummary {
	out := make([]AccountSummary, 0, len(r.order))
	for _, addr := range r.order {
		l := r.byAddr[addr]
		out = append(out, AccountSummary{
			Address:          addr,
			Trades:           l.Trades,
			Won:              l.CountProfit,
			Lost:             l.CountLoss,
			OpenPositions:    l.CountOpenPositions(),
			OpenInterest:     l.OpenInterest(),
			UnrealizedPnL:    l.UnrealizedPnL(price),
			RealizedInternal: l.RealizedInternal,
			RealizedExternal: l.RealizedExternal,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RealizedInternal != out[j].RealizedInternal {
			return out[i].RealizedInternal > out[j].RealizedInternal
		}
		return out[i].Address < out[j].Address
	})
	return out
}
