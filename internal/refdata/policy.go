package refdata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/claimready/internal/model"
)

// policyFile is the on-disk YAML structure of one insurance product.
type policyFile struct {
	PolicyID       string   `yaml:"policy_id"`
	Insurer        string   `yaml:"insurer"`
	PolicyName     string   `yaml:"policy_name"`
	Aliases        []string `yaml:"aliases"`
	WaitingPeriods struct {
		InitialDays        *int                 `yaml:"initial_days"`
		SpecificConditions map[string]yaml.Node `yaml:"specific_conditions"`
	} `yaml:"waiting_periods"`
	Exclusions           exclusionList           `yaml:"exclusions"`
	CoverageBySumInsured map[string]coverageTier `yaml:"coverage_by_sum_insured"`
}

type coverageTier struct {
	RoomRentMaxPerDay yaml.Node `yaml:"room_rent_max_per_day"`
}

// exclusionList accepts either a plain list or a mapping with a "permanent" list.
type exclusionList []string

func (e *exclusionList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return fmt.Errorf("exclusions: %w", err)
		}
		*e = list
	case yaml.MappingNode:
		var grouped struct {
			Permanent []string `yaml:"permanent"`
		}
		if err := value.Decode(&grouped); err != nil {
			return fmt.Errorf("exclusions: %w", err)
		}
		*e = grouped.Permanent
	case yaml.ScalarNode:
		if value.Tag != "!!null" {
			return fmt.Errorf("exclusions: expected list or mapping, got %q", value.Value)
		}
		*e = nil
	default:
		return fmt.Errorf("exclusions: unsupported yaml node kind %d", value.Kind)
	}
	return nil
}

// ParsePolicy decodes one policy document into a normalized PolicyRecord.
func ParsePolicy(data []byte) (model.PolicyRecord, error) {
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return model.PolicyRecord{}, fmt.Errorf("parse policy: %w", err)
	}
	if strings.TrimSpace(pf.PolicyID) == "" {
		return model.PolicyRecord{}, fmt.Errorf("parse policy: policy_id is required")
	}

	rec := model.PolicyRecord{
		ID:                 strings.TrimSpace(pf.PolicyID),
		Insurer:            strings.TrimSpace(pf.Insurer),
		Name:               strings.TrimSpace(pf.PolicyName),
		Aliases:            pf.Aliases,
		InitialWaitingDays: model.DefaultInitialWaitingDays,
		WaitingMonths:      make(map[string]int),
		InvalidWaiting:     make(map[string]string),
		Exclusions:         pf.Exclusions,
		Tiers:              make(map[int64]model.CoverageTier),
	}
	if pf.WaitingPeriods.InitialDays != nil {
		rec.InitialWaitingDays = *pf.WaitingPeriods.InitialDays
	}

	for key, node := range pf.WaitingPeriods.SpecificConditions {
		months, err := strconv.Atoi(strings.TrimSpace(node.Value))
		if node.Kind != yaml.ScalarNode || err != nil {
			rec.InvalidWaiting[key] = node.Value
			continue
		}
		rec.WaitingMonths[key] = months
	}

	for bracket, tier := range pf.CoverageBySumInsured {
		si, err := strconv.ParseInt(strings.TrimSpace(bracket), 10, 64)
		if err != nil {
			return model.PolicyRecord{}, fmt.Errorf("parse policy %s: sum insured bracket %q is not a whole number", rec.ID, bracket)
		}
		rec.Tiers[si] = model.CoverageTier{RoomRentCap: parseCap(tier.RoomRentMaxPerDay)}
	}
	return rec, nil
}

// parseCap reads a room-rent cap. Absent and null caps mean "no limit".
func parseCap(node yaml.Node) model.RoomRentCap {
	if node.Kind == 0 || node.Tag == "!!null" {
		return model.RoomRentCap{}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(node.Value), 64)
	if node.Kind != yaml.ScalarNode || err != nil {
		return model.RoomRentCap{Set: true, Raw: node.Value}
	}
	return model.RoomRentCap{PerDay: v, Set: true, Raw: node.Value, Valid: true}
}

// LoadPolicyFile reads and parses a single policy YAML file.
func LoadPolicyFile(path string) (model.PolicyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PolicyRecord{}, fmt.Errorf("read policy file: %w", err)
	}
	rec, err := ParsePolicy(data)
	if err != nil {
		return model.PolicyRecord{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

// LoadPolicies parses every .yaml/.yml file in dir, in filename order.
func LoadPolicies(dir string) ([]model.PolicyRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read policy dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var out []model.PolicyRecord
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		rec, err := LoadPolicyFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
