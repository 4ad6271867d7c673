package config

import (
	"testing"
)

func TestGetToolsetImplicitDefault(t *testing.T) {
	cfg := &Config{}
	ts, err := cfg.GetToolset("")
	if err != nil {
		t.Fatalf("Expected implicit default toolset, got error: %v", err)
	}
	if ts.Name != "default" {
		t.Errorf("Expected toolset 'default', got %q", ts.Name)
	}
	if len(ts.Tools) != 3 {
		t.Errorf("Expected 3 builtin tools, got %d", len(ts.Tools))
	}
}

func TestGetToolsetNamed(t *testing.T) {
	cfg := &Config{
		Toolsets: []Toolset{
			{Name: "default", Tools: []string{"read_file"}},
			{Name: "full", Tools: []string{"read_file", "write_file", "list_dir"}},
		},
	}

	ts, err := cfg.GetToolset("full")
	if err != nil {
		t.Fatalf("GetToolset failed: %v", err)
	}
	if len(ts.Tools) != 3 {
		t.Errorf("Expected 3 tools, got %d", len(ts.Tools))
	}

	// Unknown names fall back to default.
	ts, err = cfg.GetToolset("nonexistent")
	if err != nil {
		t.Fatalf("Fallback to default failed: %v", err)
	}
	if ts.Name != "default" {
		t.Errorf("Expected fallback to 'default', got %q", ts.Name)
	}
}

func TestGetToolsetMissingDefault(t *testing.T) {
	cfg := &Config{
		Toolsets: []Toolset{{Name: "custom", Tools: []string{"read_file"}}},
	}
	if _, err := cfg.GetToolset("default"); err == nil {
		t.Error("Expected an error when 'default' toolset is absent")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NEXUS_LLM", "openai")
	t.Setenv("MODEL_NAME", "gpt-4o")
	t.Setenv("MAX_GOAL_ACTIONS", "7")
	t.Setenv("NEXUS_REPLAN_BUDGET", "2")
	t.Setenv("NEXUS_FAILURE_THRESHOLD", "5")
	t.Setenv("TEMPERATURE", "0.2")

	cfg := &Config{Temperature: 0.7, Goal: GoalConfig{
		ReplanBudget:     DefaultReplanBudget,
		FailureThreshold: DefaultFailureThreshold,
		MaxActions:       DefaultMaxActions,
	}}
	applyEnvOverrides(cfg)

	if cfg.LLMClient != "openai" {
		t.Errorf("Expected llm 'openai', got %q", cfg.LLMClient)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Expected model 'gpt-4o', got %q", cfg.Model)
	}
	if cfg.Goal.MaxActions != 7 {
		t.Errorf("Expected max actions 7, got %d", cfg.Goal.MaxActions)
	}
	if cfg.Goal.ReplanBudget != 2 {
		t.Errorf("Expected replan budget 2, got %d", cfg.Goal.ReplanBudget)
	}
	if cfg.Goal.FailureThreshold != 5 {
		t.Errorf("Expected failure threshold 5, got %d", cfg.Goal.FailureThreshold)
	}
	if cfg.Temperature != 0.2 {
		t.Errorf("Expected temperature 0.2, got %v", cfg.Temperature)
	}
}

func TestEnvOverridesIgnoreInvalidValues(t *testing.T) {
	t.Setenv("MAX_GOAL_ACTIONS", "not-a-number")
	t.Setenv("NEXUS_FAILURE_THRESHOLD", "-1")

	cfg := &Config{Goal: GoalConfig{
		FailureThreshold: DefaultFailureThreshold,
		MaxActions:       DefaultMaxActions,
	}}
	applyEnvOverrides(cfg)

	if cfg.Goal.MaxActions != DefaultMaxActions {
		t.Errorf("Invalid MAX_GOAL_ACTIONS should be ignored, got %d", cfg.Goal.MaxActions)
	}
	if cfg.Goal.FailureThreshold != DefaultFailureThreshold {
		t.Errorf("Non-positive threshold should be ignored, got %d", cfg.Goal.FailureThreshold)
	}
}
