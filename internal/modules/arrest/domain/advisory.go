package domain

import "fmt"

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityWarning  Priority = "warning"
	PriorityInfo     Priority = "info"
	PrioritySuccess  Priority = "success"
)

// Advisory is the single prioritized guidance banner shown to the operator.
// It never forces a transition; it only tells the team what matters most
// right now.
type Advisory struct {
	Message    string   `json:"message"`
	SubMessage string   `json:"sub_message,omitempty"`
	Priority   Priority `json:"priority"`
}

// Advise selects one advisory by fixed precedence: setup phases, then
// terminal phases, then the rhythm-check sub-mode, then timing alerts, then
// dosing prompts, then the steady-state default. The phase switch is
// exhaustive so a new phase cannot ship without a banner.
func Advise(s Session, t TimerState) Advisory {
	switch s.Phase {
	case PhasePathwaySelection:
		return Advisory{Message: "Select patient pathway", SubMessage: "Adult or pediatric, then start CPR", Priority: PriorityInfo}
	case PhaseCPRPendingRhythm:
		return Advisory{Message: "Identify the rhythm", SubMessage: "Continue CPR while the monitor is attached", Priority: PriorityCritical}
	case PhasePostROSC:
		return Advisory{Message: "ROSC achieved", SubMessage: "Begin post-resuscitation care", Priority: PrioritySuccess}
	case PhaseCodeEnded:
		return Advisory{Message: "Code ended", Priority: PriorityInfo}
	case PhaseShockable, PhaseNonShockable:
		return adviseActive(s, t)
	}
	return Advisory{Message: fmt.Sprintf("Unknown phase %s", s.Phase), Priority: PriorityWarning}
}

func adviseActive(s Session, t TimerState) Advisory {
	if s.InRhythmCheck {
		return Advisory{Message: "Rhythm check in progress", SubMessage: "Pause compressions, assess the monitor", Priority: PriorityWarning}
	}
	if t.PreShockAlert {
		if s.Phase == PhaseShockable {
			return Advisory{Message: "Rhythm check soon", SubMessage: "Charge the defibrillator", Priority: PriorityWarning}
		}
		return Advisory{Message: "Rhythm check soon", SubMessage: "Prepare to pause compressions", Priority: PriorityWarning}
	}
	if t.RhythmCheckDue {
		return Advisory{Message: "Rhythm check due", SubMessage: "Pause CPR and assess the rhythm", Priority: PriorityCritical}
	}
	if t.EpiDue {
		return Advisory{Message: "Epinephrine due", Priority: PriorityWarning}
	}
	if s.CanGiveAmiodarone() && s.AmiodaroneCount == 0 {
		return Advisory{Message: "Consider amiodarone", SubMessage: "Refractory shockable rhythm", Priority: PriorityInfo}
	}
	return Advisory{Message: "Continue CPR", SubMessage: "High-quality compressions, minimize interruptions", Priority: PriorityInfo}
}
