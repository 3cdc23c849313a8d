package config

import (
	"testing"

	"github.com/shieldloop/sentryloop/pkg/domain"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Gateway: GatewayConfig{
			Agent: GatewayEndpoint{BaseURL: "https://api.example.com/v1", Model: "gpt-4o-mini", Temperature: 0.7},
			Judge: GatewayEndpoint{BaseURL: "https://api.example.com/v1", Model: "gpt-4o-mini", Temperature: 0.3},
		},
		Experiment: ExperimentDefaults{
			TotalEpisodes: 100,
			Weights:       Weights{Short: 0.5, Long: 0.5, Violation: 1.0},
			Epsilon:       0.1,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidateAcceptsAWellFormedConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsOutOfRangeTemperature(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.Agent.Temperature = 3.0
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for temperature > 2")
	}
}

func TestValidateRejectsOutOfRangeEpsilon(t *testing.T) {
	cfg := validConfig()
	cfg.Experiment.Epsilon = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for epsilon > 1")
	}
}

func TestValidateRejectsNegativeTotalEpisodes(t *testing.T) {
	cfg := validConfig()
	cfg.Experiment.TotalEpisodes = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for negative total_episodes")
	}
}

func TestValidateRejectsZeroSumWeights(t *testing.T) {
	cfg := validConfig()
	cfg.Experiment.Weights = Weights{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for all-zero reward weights")
	}
}

func TestValidateRejectsUnknownLoggingLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unrecognized logging level")
	}
}

func TestMergeOverlaysNonZeroFields(t *testing.T) {
	base := validConfig()
	overlay := &Config{
		Server:     ServerConfig{Addr: ":9090"},
		Experiment: ExperimentDefaults{EnableDefense: true},
	}

	base.Merge(overlay)

	if base.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", base.Server.Addr)
	}
	if !base.Experiment.EnableDefense {
		t.Error("expected EnableDefense to be merged in as true")
	}
	if base.Experiment.TotalEpisodes != 100 {
		t.Errorf("TotalEpisodes = %d, want unchanged 100", base.Experiment.TotalEpisodes)
	}
}

func TestApplyScenarioOverridesOnlyNamedFields(t *testing.T) {
	cfg := validConfig()
	induced := true
	epsilon := 0.2
	cfg.Scenarios = map[string]ScenarioConfig{
		"induced": {EnableEvolution: &induced, Epsilon: &epsilon},
	}

	got, err := cfg.ApplyScenario("induced")
	if err != nil {
		t.Fatalf("ApplyScenario: %v", err)
	}
	if !got.EnableEvolution {
		t.Error("expected EnableEvolution = true from scenario override")
	}
	if got.Epsilon != 0.2 {
		t.Errorf("Epsilon = %v, want 0.2", got.Epsilon)
	}
	if got.TotalEpisodes != 100 {
		t.Errorf("TotalEpisodes = %d, want inherited 100", got.TotalEpisodes)
	}
	if got.Scenario != "induced" {
		t.Errorf("Scenario = %q, want induced", got.Scenario)
	}
}

func TestApplyScenarioUnknownNameReturnsError(t *testing.T) {
	cfg := validConfig()
	if _, err := cfg.ApplyScenario("missing"); err == nil {
		t.Error("expected an error for an unknown scenario name")
	}
}

func TestExperimentDefaultsToDomainRoundTrips(t *testing.T) {
	defaults := ExperimentDefaults{
		TotalEpisodes: 50,
		Weights:       Weights{Short: 0.8, Long: 0.2, Violation: 1.0},
		Epsilon:       0.1,
	}
	got := defaults.ToDomain("baseline")
	want := domain.ExperimentConfig{
		Scenario:      "baseline",
		TotalEpisodes: 50,
		Weights:       domain.RewardWeights{Short: 0.8, Long: 0.2, Violation: 1.0},
		Epsilon:       0.1,
	}
	if got != want {
		t.Errorf("ToDomain() = %+v, want %+v", got, want)
	}
}
