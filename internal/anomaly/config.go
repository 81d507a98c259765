package anomaly

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

// ErrInvalidConfiguration is returned before any rule runs when the rule
// configuration cannot be used.
var ErrInvalidConfiguration = errors.New("invalid rule configuration")

const (
	DefaultBruteForceFailureThreshold = 5
	DefaultSensitiveBurstMB           = 100.0
	DefaultExportSpikeMB              = 200.0
	DefaultBruteForceWindow           = 10 * time.Minute
	DefaultAccessWindow               = 5 * time.Minute
)

// DefaultSensitiveResources are the resource names the read-burst rule
// watches when none are configured.
var DefaultSensitiveResources = []string{
	"customer_records",
	"shipment_manifests",
	"financial_reports",
	"driver_personnel_files",
}

// RuleConfig tunes the four rules. Zero-valued fields take the defaults
// above; negative or non-finite values are rejected.
type RuleConfig struct {
	BruteForceFailureThreshold int                      `json:"brute_force_failure_threshold"`
	SensitiveBurstMB           float64                  `json:"sensitive_burst_mb"`
	ExportSpikeMB              float64                  `json:"export_spike_mb"`
	SensitiveResources         []string                 `json:"sensitive_resources,omitempty"`
	RestrictedResourcesByRole  map[models.Role][]string `json:"restricted_resources_by_role,omitempty"`
	BruteForceWindow           time.Duration            `json:"brute_force_window,omitempty"`
	AccessWindow               time.Duration            `json:"access_window,omitempty"`
}

// DefaultRuleConfig returns the stock thresholds with no role restrictions.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{}.withDefaults()
}

func (c RuleConfig) withDefaults() RuleConfig {
	if c.BruteForceFailureThreshold == 0 {
		c.BruteForceFailureThreshold = DefaultBruteForceFailureThreshold
	}
	if c.SensitiveBurstMB == 0 {
		c.SensitiveBurstMB = DefaultSensitiveBurstMB
	}
	if c.ExportSpikeMB == 0 {
		c.ExportSpikeMB = DefaultExportSpikeMB
	}
	if c.BruteForceWindow == 0 {
		c.BruteForceWindow = DefaultBruteForceWindow
	}
	if c.AccessWindow == 0 {
		c.AccessWindow = DefaultAccessWindow
	}
	if len(c.SensitiveResources) == 0 {
		c.SensitiveResources = append([]string(nil), DefaultSensitiveResources...)
	}
	return c
}

// Validate checks a configuration after defaults have been applied.
func (c RuleConfig) Validate() error {
	var errs []error

	if c.BruteForceFailureThreshold <= 0 {
		errs = append(errs, errors.New("brute_force_failure_threshold must be positive"))
	}
	if !(c.SensitiveBurstMB > 0) || math.IsInf(c.SensitiveBurstMB, 0) {
		errs = append(errs, errors.New("sensitive_burst_mb must be a positive number"))
	}
	if !(c.ExportSpikeMB > 0) || math.IsInf(c.ExportSpikeMB, 0) {
		errs = append(errs, errors.New("export_spike_mb must be a positive number"))
	}
	if c.BruteForceWindow <= 0 {
		errs = append(errs, errors.New("brute_force_window must be positive"))
	}
	if c.AccessWindow <= 0 {
		errs = append(errs, errors.New("access_window must be positive"))
	}

	for _, name := range c.SensitiveResources {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("sensitive_resources must not contain blank names"))
			break
		}
	}

	for role, resources := range c.RestrictedResourcesByRole {
		if !role.Valid() {
			errs = append(errs, fmt.Errorf("restricted_resources_by_role has unknown role %q", role))
			continue
		}
		for _, name := range resources {
			if strings.TrimSpace(name) == "" {
				errs = append(errs, fmt.Errorf("restricted_resources_by_role[%s] contains a blank resource name", role))
				break
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, errs)
	}
	return nil
}

// compiled is the lookup-friendly form of a validated RuleConfig.
type compiled struct {
	RuleConfig
	sensitive  map[string]struct{}
	restricted map[models.Role]map[string]struct{}
}

func compile(cfg RuleConfig) (*compiled, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &compiled{
		RuleConfig: cfg,
		sensitive:  toSet(cfg.SensitiveResources),
		restricted: make(map[models.Role]map[string]struct{}, len(cfg.RestrictedResourcesByRole)),
	}
	for role, resources := range cfg.RestrictedResourcesByRole {
		if len(resources) > 0 {
			c.restricted[role] = toSet(resources)
		}
	}
	return c, nil
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[strings.TrimSpace(name)] = struct{}{}
	}
	return set
}
