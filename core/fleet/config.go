package fleet

import (
	"fmt"
	"time"
)

// Config tunes the continuous optimization loop and the automation gate. It
// is validated once at loop start; a bad configuration is the one fatal error
// class in this package.
type Config struct {
	AutoApproveThreshold         float64  `json:"auto_approve_threshold" yaml:"auto_approve_threshold"`
	MaxConsolidationLoads        int      `json:"max_consolidation_loads" yaml:"max_consolidation_loads"`
	RequireManualReview          bool     `json:"require_manual_review" yaml:"require_manual_review"`
	HighValueThreshold           float64  `json:"high_value_threshold" yaml:"high_value_threshold"`
	MinCapacityThreshold         float64  `json:"min_capacity_threshold" yaml:"min_capacity_threshold"`
	MaxDeadheadMiles             float64  `json:"max_deadhead_miles" yaml:"max_deadhead_miles"`
	HOSBufferMinutes             float64  `json:"hos_buffer_minutes" yaml:"hos_buffer_minutes"`
	OptimizationFrequencyMinutes int      `json:"optimization_frequency_minutes" yaml:"optimization_frequency_minutes"`
	ConsolidationBenefitRate     float64  `json:"consolidation_benefit_rate" yaml:"consolidation_benefit_rate"`
	SwapBenefitThreshold         float64  `json:"swap_benefit_threshold" yaml:"swap_benefit_threshold"`
	CollaboratorTimeoutSeconds   int      `json:"collaborator_timeout_seconds" yaml:"collaborator_timeout_seconds"`
	NotifyChannels               []string `json:"notify_channels" yaml:"notify_channels"`
}

// SetDefaults fills in zero fields with the standard operating values.
func (c *Config) SetDefaults() {
	if c.AutoApproveThreshold == 0 {
		c.AutoApproveThreshold = 85
	}
	if c.MaxConsolidationLoads == 0 {
		c.MaxConsolidationLoads = 3
	}
	if c.HighValueThreshold == 0 {
		c.HighValueThreshold = 10000
	}
	if c.MinCapacityThreshold == 0 {
		c.MinCapacityThreshold = 75
	}
	if c.MaxDeadheadMiles == 0 {
		c.MaxDeadheadMiles = 50
	}
	if c.HOSBufferMinutes == 0 {
		c.HOSBufferMinutes = 30
	}
	if c.OptimizationFrequencyMinutes == 0 {
		c.OptimizationFrequencyMinutes = 5
	}
	if c.ConsolidationBenefitRate == 0 {
		c.ConsolidationBenefitRate = 0.15
	}
	if c.SwapBenefitThreshold == 0 {
		c.SwapBenefitThreshold = 1000
	}
	if c.CollaboratorTimeoutSeconds == 0 {
		c.CollaboratorTimeoutSeconds = 5
	}
	if len(c.NotifyChannels) == 0 {
		c.NotifyChannels = []string{string(ChannelDashboard)}
	}
}

// Validate rejects configurations the loop must not start with.
func (c Config) Validate() error {
	if c.AutoApproveThreshold < 0 || c.AutoApproveThreshold > 100 {
		return fmt.Errorf("fleet: auto_approve_threshold must be within [0,100], got %v", c.AutoApproveThreshold)
	}
	if c.MaxConsolidationLoads < 1 {
		return fmt.Errorf("fleet: max_consolidation_loads must be at least 1, got %d", c.MaxConsolidationLoads)
	}
	if c.HighValueThreshold < 0 {
		return fmt.Errorf("fleet: high_value_threshold must not be negative, got %v", c.HighValueThreshold)
	}
	if c.MinCapacityThreshold < 0 || c.MinCapacityThreshold > 100 {
		return fmt.Errorf("fleet: min_capacity_threshold must be within [0,100], got %v", c.MinCapacityThreshold)
	}
	if c.MaxDeadheadMiles < 0 {
		return fmt.Errorf("fleet: max_deadhead_miles must not be negative, got %v", c.MaxDeadheadMiles)
	}
	if c.HOSBufferMinutes < 0 {
		return fmt.Errorf("fleet: hos_buffer_minutes must not be negative, got %v", c.HOSBufferMinutes)
	}
	if c.OptimizationFrequencyMinutes < 1 {
		return fmt.Errorf("fleet: optimization_frequency_minutes must be at least 1, got %d", c.OptimizationFrequencyMinutes)
	}
	if c.ConsolidationBenefitRate < 0 || c.ConsolidationBenefitRate > 1 {
		return fmt.Errorf("fleet: consolidation_benefit_rate must be within [0,1], got %v", c.ConsolidationBenefitRate)
	}
	if c.SwapBenefitThreshold < 0 {
		return fmt.Errorf("fleet: swap_benefit_threshold must not be negative, got %v", c.SwapBenefitThreshold)
	}
	if c.CollaboratorTimeoutSeconds < 1 {
		return fmt.Errorf("fleet: collaborator_timeout_seconds must be at least 1, got %d", c.CollaboratorTimeoutSeconds)
	}
	return nil
}

// TickInterval returns the loop period as a duration.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.OptimizationFrequencyMinutes) * time.Minute
}

// CollaboratorTimeout returns the bounded-time budget for a single
// collaborator call.
func (c Config) CollaboratorTimeout() time.Duration {
	return time.Duration(c.CollaboratorTimeoutSeconds) * time.Second
}

// Channels converts the configured channel names.
func (c Config) Channels() []Channel {
	out := make([]Channel, len(c.NotifyChannels))
	for i, name := range c.NotifyChannels {
		out[i] = Channel(name)
	}
	return out
}
