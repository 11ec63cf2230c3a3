package domain

import (
	"fmt"
	"strconv"
)

// Dose is the outcome of one dosing computation. Value is nil when the
// computation needs a patient weight that is unknown; Display is always safe
// to show and falls back to the per-kg formula in that case.
type Dose struct {
	Value   *float64
	Unit    string
	Display string
}

// Strategy computes drug doses and defibrillation energies for one pathway
// mode. Occurrence is the zero-based index of the administration: 0 is the
// first dose of that drug (or the first shock) within the episode.
//
// Adult and pediatric escalation are different algorithms that happen to
// share names, so they stay separate implementations on purpose.
type Strategy interface {
	Epinephrine(occurrence int) Dose
	Amiodarone(occurrence int) Dose
	Lidocaine(occurrence int) Dose
	Atropine(occurrence int) Dose
	Adenosine(occurrence int) Dose
	Procainamide() Dose
	ShockEnergy(occurrence int) Dose
	Cardioversion(occurrence int) Dose
}

// AdultStrategy uses fixed dose tables keyed by occurrence. Energy follows a
// two-tier switch: the configured initial joules for the first shock, the
// device maximum from the second shock on.
type AdultStrategy struct {
	InitialJoules float64
	MaxJoules     float64
}

func (s AdultStrategy) Epinephrine(int) Dose {
	return fixed(1, "mg")
}

func (s AdultStrategy) Amiodarone(occurrence int) Dose {
	if occurrence == 0 {
		return fixed(300, "mg")
	}
	return fixed(150, "mg")
}

func (s AdultStrategy) Lidocaine(occurrence int) Dose {
	if occurrence == 0 {
		return fixed(100, "mg")
	}
	return fixed(50, "mg")
}

func (s AdultStrategy) Atropine(int) Dose {
	return fixed(1, "mg")
}

func (s AdultStrategy) Adenosine(occurrence int) Dose {
	if occurrence == 0 {
		return fixed(6, "mg")
	}
	return fixed(12, "mg")
}

func (s AdultStrategy) Procainamide() Dose {
	return Dose{Unit: "mg/min", Display: "20 mg/min infusion, max 17 mg/kg"}
}

func (s AdultStrategy) ShockEnergy(occurrence int) Dose {
	if occurrence == 0 {
		return fixed(s.InitialJoules, "J")
	}
	return fixed(s.MaxJoules, "J")
}

func (s AdultStrategy) Cardioversion(occurrence int) Dose {
	if occurrence == 0 {
		return fixed(100, "J")
	}
	return fixed(s.MaxJoules, "J")
}

// PediatricStrategy computes weight-based doses capped at adult equivalents.
// WeightKg nil degrades every computation to a per-kg display string.
// Shock energy escalates by occurrence: 2 J/kg, then 4 J/kg for the second
// and third shocks, then 10 J/kg, all capped at CapJoules.
type PediatricStrategy struct {
	WeightKg  *float64
	CapJoules float64
}

func (s PediatricStrategy) Epinephrine(int) Dose {
	return perKg(s.WeightKg, 0.01, 1, "mg")
}

func (s PediatricStrategy) Amiodarone(occurrence int) Dose {
	cap := 300.0
	if occurrence > 0 {
		cap = 150
	}
	return perKg(s.WeightKg, 5, cap, "mg")
}

func (s PediatricStrategy) Lidocaine(int) Dose {
	return perKg(s.WeightKg, 1, 100, "mg")
}

func (s PediatricStrategy) Atropine(int) Dose {
	d := perKg(s.WeightKg, 0.02, 0.5, "mg")
	if d.Value != nil && *d.Value < 0.1 {
		return fixed(0.1, "mg")
	}
	return d
}

func (s PediatricStrategy) Adenosine(occurrence int) Dose {
	if occurrence == 0 {
		return perKg(s.WeightKg, 0.1, 6, "mg")
	}
	return perKg(s.WeightKg, 0.2, 12, "mg")
}

func (s PediatricStrategy) Procainamide() Dose {
	return perKg(s.WeightKg, 15, 1000, "mg")
}

func (s PediatricStrategy) ShockEnergy(occurrence int) Dose {
	rate := 2.0
	switch {
	case occurrence >= 3:
		rate = 10
	case occurrence >= 1:
		rate = 4
	}
	return perKg(s.WeightKg, rate, s.CapJoules, "J")
}

func (s PediatricStrategy) Cardioversion(occurrence int) Dose {
	rate := 1.0
	if occurrence > 0 {
		rate = 2
	}
	return perKg(s.WeightKg, rate, s.CapJoules, "J")
}

func fixed(value float64, unit string) Dose {
	return Dose{Value: &value, Unit: unit, Display: formatValue(value) + " " + unit}
}

func perKg(weightKg *float64, ratePerKg, ceiling float64, unit string) Dose {
	if weightKg == nil {
		return Dose{Unit: unit, Display: fmt.Sprintf("%s %s/kg", formatValue(ratePerKg), unit)}
	}
	value := *weightKg * ratePerKg
	if value > ceiling {
		value = ceiling
	}
	return Dose{Value: &value, Unit: unit, Display: formatValue(value) + " " + unit}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
