package domain_test

import (
	"testing"

	"codeclock/internal/modules/dosing/domain"
)

func weight(kg float64) *float64 { return &kg }

func TestPediatricEpinephrinePerKgWithCeiling(t *testing.T) {
	t.Parallel()
	s := domain.PediatricStrategy{WeightKg: weight(20), CapJoules: 360}
	d := s.Epinephrine(0)
	if d.Value == nil || *d.Value != 0.2 {
		t.Fatalf("20 kg epinephrine should be 0.2 mg, got %+v", d)
	}
	heavy := domain.PediatricStrategy{WeightKg: weight(150), CapJoules: 360}
	d = heavy.Epinephrine(0)
	if d.Value == nil || *d.Value != 1 {
		t.Fatalf("epinephrine must cap at 1 mg, got %+v", d)
	}
}

func TestPediatricUnknownWeightDegradesToFormula(t *testing.T) {
	t.Parallel()
	s := domain.PediatricStrategy{CapJoules: 360}
	d := s.Epinephrine(0)
	if d.Value != nil {
		t.Fatalf("unknown weight must give nil value, got %v", *d.Value)
	}
	if d.Display != "0.01 mg/kg" {
		t.Fatalf("expected per-kg formula display, got %q", d.Display)
	}
	if e := s.ShockEnergy(0); e.Value != nil || e.Display != "2 J/kg" {
		t.Fatalf("expected 2 J/kg formula, got %+v", e)
	}
}

func TestAdultAmiodaroneOccurrenceTable(t *testing.T) {
	t.Parallel()
	s := domain.AdultStrategy{InitialJoules: 120, MaxJoules: 200}
	if d := s.Amiodarone(0); d.Value == nil || *d.Value != 300 {
		t.Fatalf("first amiodarone should be 300 mg, got %+v", d)
	}
	if d := s.Amiodarone(1); d.Value == nil || *d.Value != 150 {
		t.Fatalf("second amiodarone should be 150 mg, got %+v", d)
	}
}

func TestAdultShockEnergyTwoTierSwitch(t *testing.T) {
	t.Parallel()
	s := domain.AdultStrategy{InitialJoules: 120, MaxJoules: 200}
	if d := s.ShockEnergy(0); *d.Value != 120 {
		t.Fatalf("first shock should use initial joules, got %+v", d)
	}
	for occ := 1; occ < 5; occ++ {
		if d := s.ShockEnergy(occ); *d.Value != 200 {
			t.Fatalf("shock %d should use max joules, got %+v", occ+1, d)
		}
	}
}

func TestPediatricShockEnergyEscalatesByOccurrence(t *testing.T) {
	t.Parallel()
	s := domain.PediatricStrategy{WeightKg: weight(10), CapJoules: 360}
	cases := []struct {
		occurrence int
		want       float64
	}{
		{0, 20},  // 2 J/kg
		{1, 40},  // 4 J/kg
		{2, 40},  // 4 J/kg
		{3, 100}, // 10 J/kg
		{6, 100},
	}
	for _, tc := range cases {
		d := s.ShockEnergy(tc.occurrence)
		if d.Value == nil || *d.Value != tc.want {
			t.Fatalf("occurrence %d: want %.0f J, got %+v", tc.occurrence, tc.want, d)
		}
	}
	big := domain.PediatricStrategy{WeightKg: weight(80), CapJoules: 360}
	if d := big.ShockEnergy(5); *d.Value != 360 {
		t.Fatalf("10 J/kg at 80 kg must cap at 360 J, got %+v", d)
	}
}

func TestPediatricAtropineFloorAndCeiling(t *testing.T) {
	t.Parallel()
	tiny := domain.PediatricStrategy{WeightKg: weight(3), CapJoules: 360}
	if d := tiny.Atropine(0); d.Value == nil || *d.Value != 0.1 {
		t.Fatalf("atropine floor is 0.1 mg, got %+v", d)
	}
	big := domain.PediatricStrategy{WeightKg: weight(60), CapJoules: 360}
	if d := big.Atropine(0); d.Value == nil || *d.Value != 0.5 {
		t.Fatalf("atropine ceiling is 0.5 mg, got %+v", d)
	}
}

func TestAdenosineFirstAndSecondDose(t *testing.T) {
	t.Parallel()
	adult := domain.AdultStrategy{InitialJoules: 120, MaxJoules: 200}
	if d := adult.Adenosine(0); *d.Value != 6 {
		t.Fatalf("adult first adenosine is 6 mg, got %+v", d)
	}
	if d := adult.Adenosine(1); *d.Value != 12 {
		t.Fatalf("adult second adenosine is 12 mg, got %+v", d)
	}
	peds := domain.PediatricStrategy{WeightKg: weight(25), CapJoules: 360}
	if d := peds.Adenosine(0); *d.Value != 2.5 {
		t.Fatalf("pediatric first adenosine is 0.1 mg/kg, got %+v", d)
	}
	if d := peds.Adenosine(1); *d.Value != 5 {
		t.Fatalf("pediatric second adenosine is 0.2 mg/kg, got %+v", d)
	}
}
