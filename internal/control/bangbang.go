package control

// BangBang switches between full power and off with a hysteresis band of
// MaxDelta around the setpoint.
type BangBang struct {
	MaxDelta float64
	MaxPower float64
	heating  bool
}

func NewBangBang(maxDelta, maxPower float64) *BangBang {
	return &BangBang{MaxDelta: maxDelta, MaxPower: maxPower}
}

func (b *BangBang) Update(setpoint, measured, dt float64) float64 {
	if b.heating && measured >= setpoint+b.MaxDelta {
		b.heating = false
	} else if !b.heating && measured <= setpoint-b.MaxDelta {
		b.heating = true
	}
	if b.heating {
		return b.MaxPower
	}
	return 0
}

func (b *BangBang) Heating() bool { return b.heating }
