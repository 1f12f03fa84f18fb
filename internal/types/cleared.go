package types

// ClearedRecord accumulates the cleared volume and the running
// volume-weighted mean price for one delivery slot. The zero value is the
// well-defined sentinel for "nothing cleared yet"; callers must tolerate
// it without dividing by zero.
type ClearedRecord struct {
	TotalMWh  float64 `yaml:"total_mwh" json:"total_mwh" csv:"total_mwh"`
	MeanPrice float64 `yaml:"mean_price" json:"mean_price" csv:"mean_price"`
}

// IsZero reports whether the record is the empty sentinel.
func (r ClearedRecord) IsZero() bool {
	return r.TotalMWh == 0 && r.MeanPrice == 0
}

// Merge folds one more cleared trade into the record, keeping MeanPrice
// the volume-weighted mean of everything recorded so far.
func (r ClearedRecord) Merge(mwh, price float64) ClearedRecord {
	total := r.TotalMWh + mwh
	if total == 0 {
		return ClearedRecord{TotalMWh: 0, MeanPrice: 0}
	}

	return ClearedRecord{
		TotalMWh:  total,
		MeanPrice: (r.MeanPrice*r.TotalMWh + price*mwh) / total,
	}
}

// ForwardWindow is a fixed-length snapshot of the most recently known
// cleared records for the slots following an anchor. Records[i] belongs to
// slot Anchor+i+1. It is read-only once built.
type ForwardWindow struct {
	Anchor  DeliverySlot    `yaml:"anchor" json:"anchor"`
	Records []ClearedRecord `yaml:"records" json:"records"`
}
