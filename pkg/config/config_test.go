package config

import "testing"

func TestAtoiOr(t *testing.T) {
	if got := atoiOr("", 7); got != 7 {
		t.Errorf("empty = %d, want default", got)
	}
	if got := atoiOr("42", 7); got != 42 {
		t.Errorf("valid = %d, want 42", got)
	}
	if got := atoiOr("not a number", 7); got != 7 {
		t.Errorf("garbage = %d, want default", got)
	}
}

func TestAtofOr(t *testing.T) {
	if got := atofOr("", 0.7); got != 0.7 {
		t.Errorf("empty = %v, want default", got)
	}
	if got := atofOr("0.25", 0.7); got != 0.25 {
		t.Errorf("valid = %v, want 0.25", got)
	}
	if got := atofOr("garbage", 0.7); got != 0.7 {
		t.Errorf("garbage = %v, want default", got)
	}
}

func TestDefaults(t *testing.T) {
	// init ran without env overrides in this process
	if AgentDebounceMS <= 0 || AgentThinkMS <= 0 {
		t.Errorf("agent delays not positive: debounce=%d think=%d", AgentDebounceMS, AgentThinkMS)
	}
	if AgentThresholdMin > AgentThresholdMax {
		t.Errorf("threshold bounds inverted: [%d,%d]", AgentThresholdMin, AgentThresholdMax)
	}
	if AgentTextProbability < 0 || AgentTextProbability > 1 {
		t.Errorf("text probability out of range: %v", AgentTextProbability)
	}
	if Port == "" || DBPath == "" || UploadsDir == "" {
		t.Error("paths and port must have defaults")
	}
}
