/*
Package factory provides JSON and TOML to Go rule-table conversion.

PURPOSE:
  Converts rule documents into timekeeping.RuleTables. Absence types and
  contract types are configuration owned by HR, so they live in a document
  that can be edited without code changes, seeded into a store with
  `hours-server seed-rules`, or posted to PUT /rules.

DOCUMENT SCHEMA (JSON):
  {
    "absences": [
      {
        "code": "VAC",
        "name": "Vacation",
        "computes_to_weekly_hours": true,
        "computes_to_annual_hours": true,
        "is_vacation": true,
        "annual_hour_budget": 40,
        "affected_bag": ""
      }
    ],
    "contracts": [
      {"code": "FT", "name": "Full time", "computes_ordinary_bag": true,
       "computes_holiday_bag": true, "computes_leave_bag": true}
    ]
  }

  The TOML form uses [[absences]] and [[contracts]] tables with the same keys.

VALIDATION:
  - codes are required and unique within their table
  - "none" is reserved for "no absence"
  - affected_bag must be empty, "ordinary", "holiday" or "leave"
  - annual_hour_budget must be finite and non-negative

USAGE:
  f := factory.NewRuleFactory()
  tables, err := f.LoadFile("rules.toml")

SEE ALSO:
  - timekeeping/rules.go: RuleTables and flag semantics
  - cmd/server/main.go: seed-rules command
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/warp/hours-engine/timekeeping"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// RulesDocument is the on-disk representation of the rule tables.
type RulesDocument struct {
	Absences  []AbsenceJSON  `json:"absences" toml:"absences"`
	Contracts []ContractJSON `json:"contracts" toml:"contracts"`
}

// AbsenceJSON represents one absence type.
type AbsenceJSON struct {
	Code                    string   `json:"code" toml:"code"`
	Name                    string   `json:"name" toml:"name"`
	ComputesToWeeklyHours   bool     `json:"computes_to_weekly_hours,omitempty" toml:"computes_to_weekly_hours"`
	ComputesToAnnualHours   bool     `json:"computes_to_annual_hours,omitempty" toml:"computes_to_annual_hours"`
	SuspendsContract        bool     `json:"suspends_contract,omitempty" toml:"suspends_contract"`
	AnnualHourBudget        *float64 `json:"annual_hour_budget,omitempty" toml:"annual_hour_budget"`
	DeductsTheoreticalHours bool     `json:"deducts_theoretical_hours,omitempty" toml:"deducts_theoretical_hours"`
	ComputesFullDay         bool     `json:"computes_full_day,omitempty" toml:"computes_full_day"`
	AffectedBag             string   `json:"affected_bag,omitempty" toml:"affected_bag"`
	AllowsPartialHours      bool     `json:"allows_partial_hours,omitempty" toml:"allows_partial_hours"`
	IsVacation              bool     `json:"is_vacation,omitempty" toml:"is_vacation"`
}

// ContractJSON represents one contract type.
type ContractJSON struct {
	Code                string `json:"code" toml:"code"`
	Name                string `json:"name" toml:"name"`
	ComputesOrdinaryBag bool   `json:"computes_ordinary_bag" toml:"computes_ordinary_bag"`
	ComputesHolidayBag  bool   `json:"computes_holiday_bag" toml:"computes_holiday_bag"`
	ComputesLeaveBag    bool   `json:"computes_leave_bag" toml:"computes_leave_bag"`
}

// =============================================================================
// RULE FACTORY
// =============================================================================

// RuleFactory converts rule documents to rule tables.
type RuleFactory struct{}

// NewRuleFactory creates a new rule factory.
func NewRuleFactory() *RuleFactory {
	return &RuleFactory{}
}

// ParseJSON parses a JSON rule document.
func (f *RuleFactory) ParseJSON(data []byte) (timekeeping.RuleTables, error) {
	var doc RulesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return timekeeping.RuleTables{}, fmt.Errorf("failed to parse rules JSON: %w", err)
	}
	return f.FromDocument(doc)
}

// ParseTOML parses a TOML rule document.
func (f *RuleFactory) ParseTOML(data []byte) (timekeeping.RuleTables, error) {
	var doc RulesDocument
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return timekeeping.RuleTables{}, fmt.Errorf("failed to parse rules TOML: %w", err)
	}
	return f.FromDocument(doc)
}

// LoadFile reads a rule document, picking the format from the extension.
// Anything other than .toml is read as JSON.
func (f *RuleFactory) LoadFile(path string) (timekeeping.RuleTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return timekeeping.RuleTables{}, fmt.Errorf("read rules file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return f.ParseTOML(data)
	}
	return f.ParseJSON(data)
}

// FromDocument validates and converts a document.
func (f *RuleFactory) FromDocument(doc RulesDocument) (timekeeping.RuleTables, error) {
	absences := make([]timekeeping.AbsenceType, 0, len(doc.Absences))
	seen := map[string]bool{}
	for i, aj := range doc.Absences {
		a, err := parseAbsence(aj)
		if err != nil {
			return timekeeping.RuleTables{}, fmt.Errorf("absences[%d]: %w", i, err)
		}
		if seen[aj.Code] {
			return timekeeping.RuleTables{}, fmt.Errorf("absences[%d]: duplicate code %q", i, aj.Code)
		}
		seen[aj.Code] = true
		absences = append(absences, a)
	}

	contracts := make([]timekeeping.ContractType, 0, len(doc.Contracts))
	seen = map[string]bool{}
	for i, cj := range doc.Contracts {
		if cj.Code == "" {
			return timekeeping.RuleTables{}, fmt.Errorf("contracts[%d]: code is required", i)
		}
		if seen[cj.Code] {
			return timekeeping.RuleTables{}, fmt.Errorf("contracts[%d]: duplicate code %q", i, cj.Code)
		}
		seen[cj.Code] = true
		contracts = append(contracts, timekeeping.ContractType{
			Code:                timekeeping.ContractCode(cj.Code),
			Name:                cj.Name,
			ComputesOrdinaryBag: cj.ComputesOrdinaryBag,
			ComputesHolidayBag:  cj.ComputesHolidayBag,
			ComputesLeaveBag:    cj.ComputesLeaveBag,
		})
	}

	return timekeeping.NewRuleTables(absences, contracts), nil
}

// ToDocument converts rule tables back to a document, sorted by code.
func (f *RuleFactory) ToDocument(tables timekeeping.RuleTables) RulesDocument {
	doc := RulesDocument{Absences: []AbsenceJSON{}, Contracts: []ContractJSON{}}
	for _, a := range tables.AbsenceList() {
		aj := AbsenceJSON{
			Code:                    string(a.Code),
			Name:                    a.Name,
			ComputesToWeeklyHours:   a.ComputesToWeeklyHours,
			ComputesToAnnualHours:   a.ComputesToAnnualHours,
			SuspendsContract:        a.SuspendsContract,
			DeductsTheoreticalHours: a.DeductsTheoreticalHours,
			ComputesFullDay:         a.ComputesFullDay,
			AffectedBag:             string(a.AffectedBag),
			AllowsPartialHours:      a.AllowsPartialHours,
			IsVacation:              a.IsVacation,
		}
		if a.AnnualHourBudget != nil {
			v, _ := a.AnnualHourBudget.Float64()
			aj.AnnualHourBudget = &v
		}
		doc.Absences = append(doc.Absences, aj)
	}
	for _, c := range tables.ContractList() {
		doc.Contracts = append(doc.Contracts, ContractJSON{
			Code:                string(c.Code),
			Name:                c.Name,
			ComputesOrdinaryBag: c.ComputesOrdinaryBag,
			ComputesHolidayBag:  c.ComputesHolidayBag,
			ComputesLeaveBag:    c.ComputesLeaveBag,
		})
	}
	sort.Slice(doc.Absences, func(i, j int) bool { return doc.Absences[i].Code < doc.Absences[j].Code })
	sort.Slice(doc.Contracts, func(i, j int) bool { return doc.Contracts[i].Code < doc.Contracts[j].Code })
	return doc
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseAbsence(aj AbsenceJSON) (timekeeping.AbsenceType, error) {
	switch aj.Code {
	case "":
		return timekeeping.AbsenceType{}, fmt.Errorf("code is required")
	case string(timekeeping.NoAbsence):
		return timekeeping.AbsenceType{}, fmt.Errorf("code %q is reserved", aj.Code)
	}
	bag, err := parseBag(aj.AffectedBag)
	if err != nil {
		return timekeeping.AbsenceType{}, err
	}
	a := timekeeping.AbsenceType{
		Code:                    timekeeping.AbsenceCode(aj.Code),
		Name:                    aj.Name,
		ComputesToWeeklyHours:   aj.ComputesToWeeklyHours,
		ComputesToAnnualHours:   aj.ComputesToAnnualHours,
		SuspendsContract:        aj.SuspendsContract,
		DeductsTheoreticalHours: aj.DeductsTheoreticalHours,
		ComputesFullDay:         aj.ComputesFullDay,
		AffectedBag:             bag,
		AllowsPartialHours:      aj.AllowsPartialHours,
		IsVacation:              aj.IsVacation,
	}
	if aj.AnnualHourBudget != nil {
		budget, err := timekeeping.HoursFromFloat("annual_hour_budget", *aj.AnnualHourBudget)
		if err != nil {
			return timekeeping.AbsenceType{}, err
		}
		a.AnnualHourBudget = &budget
	}
	return a, nil
}

func parseBag(s string) (timekeeping.Bag, error) {
	switch timekeeping.Bag(s) {
	case timekeeping.BagNone, timekeeping.BagOrdinary, timekeeping.BagHoliday, timekeeping.BagLeave:
		return timekeeping.Bag(s), nil
	}
	return timekeeping.BagNone, fmt.Errorf("unknown affected_bag %q", s)
}
