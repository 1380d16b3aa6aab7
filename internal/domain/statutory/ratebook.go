package statutory

import "fmt"

// RateBook is the immutable set of rate rows in force for one financial year.
type RateBook struct {
	FinancialYear int

	pf   *PFRule
	esi  *ESIRule
	pt   map[string]PTTable
	lwf  map[string]LWFRate
	tds  map[Regime]TDSTable
	caps ExemptionCaps
}

// NewRateBook picks, for every table kind (and state or regime), the row with the greatest
// EffectiveFrom that covers fy.
func NewRateBook(t Tables, fy int) *RateBook {
	b := &RateBook{
		FinancialYear: fy,
		pt:            make(map[string]PTTable),
		lwf:           make(map[string]LWFRate),
		tds:           make(map[Regime]TDSTable),
	}

	for i := range t.PF {
		r := t.PF[i]
		if r.Covers(fy) && (b.pf == nil || r.EffectiveFrom > b.pf.EffectiveFrom) {
			b.pf = &r
		}
	}
	for i := range t.ESI {
		r := t.ESI[i]
		if r.Covers(fy) && (b.esi == nil || r.EffectiveFrom > b.esi.EffectiveFrom) {
			b.esi = &r
		}
	}
	for _, r := range t.PT {
		if cur, ok := b.pt[r.State]; r.Covers(fy) && (!ok || r.EffectiveFrom > cur.EffectiveFrom) {
			b.pt[r.State] = r
		}
	}
	for _, r := range t.LWF {
		if cur, ok := b.lwf[r.State]; r.Covers(fy) && (!ok || r.EffectiveFrom > cur.EffectiveFrom) {
			b.lwf[r.State] = r
		}
	}
	for _, r := range t.TDS {
		if cur, ok := b.tds[r.Regime]; r.Covers(fy) && (!ok || r.EffectiveFrom > cur.EffectiveFrom) {
			b.tds[r.Regime] = r
		}
	}
	found := false
	for _, r := range t.Caps {
		if r.Covers(fy) && (!found || r.EffectiveFrom > b.caps.EffectiveFrom) {
			b.caps = r
			found = true
		}
	}

	return b
}

func (b *RateBook) PF() (PFRule, error) {
	if b.pf == nil {
		return PFRule{}, fmt.Errorf("%w: PF for FY %d", ErrRateTableMissing, b.FinancialYear)
	}
	return *b.pf, nil
}

func (b *RateBook) ESI() (ESIRule, error) {
	if b.esi == nil {
		return ESIRule{}, fmt.Errorf("%w: ESI for FY %d", ErrRateTableMissing, b.FinancialYear)
	}
	return *b.esi, nil
}

func (b *RateBook) PT(state string) (PTTable, error) {
	t, ok := b.pt[state]
	if !ok {
		return PTTable{}, fmt.Errorf("%w: professional tax for state %q FY %d", ErrRateTableMissing, state, b.FinancialYear)
	}
	return t, nil
}

func (b *RateBook) LWF(state string) (LWFRate, error) {
	r, ok := b.lwf[state]
	if !ok {
		return LWFRate{}, fmt.Errorf("%w: LWF for state %q FY %d", ErrRateTableMissing, state, b.FinancialYear)
	}
	return r, nil
}

func (b *RateBook) TDS(regime Regime) (TDSTable, error) {
	t, ok := b.tds[regime]
	if !ok {
		return TDSTable{}, fmt.Errorf("%w: %s regime income tax for FY %d", ErrRateTableMissing, regime, b.FinancialYear)
	}
	return t, nil
}

// Caps returns the exemption caps in force; empty caps allow every section in full.
func (b *RateBook) Caps() ExemptionCaps {
	return b.caps
}
