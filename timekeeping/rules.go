/*
rules.go - Absence-type and contract-type rule tables

PURPOSE:
  Rule records are flat flag structs, not a type hierarchy. Each day's
  behaviour is decided by reading flags off the AbsenceType it references
  and the ContractType of the active employment period.

ABSENCE TYPE FLAGS:
  ComputesToWeeklyHours:   absence hours count toward the weekly total
  ComputesFullDay:         treated as a full-day replacement (also counts weekly)
  ComputesToAnnualHours:   absence hours count as hours done in the year
  SuspendsContract:        pauses the contract (annual target, vacation)
  IsVacation:              counted as a vacation day
  DeductsTheoreticalHours: absence hours are removed from the day's schedule
  AllowsPartialHours:      may be recorded as partial hours of a day
  AffectedBag:             bag directly debited by the absence hours
  AnnualHourBudget:        optional yearly cap, reported by budget usage

CONTRACT TYPE FLAGS:
  ComputesOrdinaryBag / ComputesHolidayBag / ComputesLeaveBag gate each bag.

UNMAPPED RULES:
  A code missing from the tables is not an error. Absences resolve to
  "no rule" (no-op) and contracts resolve to DefaultContractType, which
  computes every bag. Both cases are logged by the calculator.

SEE ALSO:
  - factory/rules.go: JSON and TOML parsing into RuleTables
  - weekly.go: where the flags are applied
*/
package timekeeping

import (
	"github.com/shopspring/decimal"
)

// AbsenceType is the rule record for one absence code.
type AbsenceType struct {
	Code                    AbsenceCode      `json:"code"`
	Name                    string           `json:"name"`
	ComputesToWeeklyHours   bool             `json:"computes_to_weekly_hours"`
	ComputesToAnnualHours   bool             `json:"computes_to_annual_hours"`
	SuspendsContract        bool             `json:"suspends_contract"`
	AnnualHourBudget        *decimal.Decimal `json:"annual_hour_budget,omitempty"`
	DeductsTheoreticalHours bool             `json:"deducts_theoretical_hours"`
	ComputesFullDay         bool             `json:"computes_full_day"`
	AffectedBag             Bag              `json:"affected_bag"`
	AllowsPartialHours      bool             `json:"allows_partial_hours"`
	IsVacation              bool             `json:"is_vacation"`
}

// CountsTowardWeek reports whether absence hours add to the weekly total.
func (a AbsenceType) CountsTowardWeek() bool {
	return a.ComputesToWeeklyHours || a.ComputesFullDay
}

// ContractType gates which bags are computed.
type ContractType struct {
	Code                ContractCode `json:"code"`
	Name                string       `json:"name"`
	ComputesOrdinaryBag bool         `json:"computes_ordinary_bag"`
	ComputesHolidayBag  bool         `json:"computes_holiday_bag"`
	ComputesLeaveBag    bool         `json:"computes_leave_bag"`
}

// Computes reports whether the contract computes bag.
func (c ContractType) Computes(bag Bag) bool {
	switch bag {
	case BagOrdinary:
		return c.ComputesOrdinaryBag
	case BagHoliday:
		return c.ComputesHolidayBag
	case BagLeave:
		return c.ComputesLeaveBag
	}
	return false
}

// DefaultContractType is applied when a contract code is not in the tables.
func DefaultContractType(code ContractCode) ContractType {
	return ContractType{
		Code:                code,
		ComputesOrdinaryBag: true,
		ComputesHolidayBag:  true,
		ComputesLeaveBag:    true,
	}
}

// RuleTables holds the rule records for one calculation call.
type RuleTables struct {
	Absences  map[AbsenceCode]AbsenceType
	Contracts map[ContractCode]ContractType
}

// NewRuleTables indexes the given rules by code.
func NewRuleTables(absences []AbsenceType, contracts []ContractType) RuleTables {
	t := RuleTables{
		Absences:  make(map[AbsenceCode]AbsenceType, len(absences)),
		Contracts: make(map[ContractCode]ContractType, len(contracts)),
	}
	for _, a := range absences {
		t.Absences[a.Code] = a
	}
	for _, c := range contracts {
		t.Contracts[c.Code] = c
	}
	return t
}

// Absence looks up an absence rule. NoAbsence never resolves.
func (t RuleTables) Absence(code AbsenceCode) (AbsenceType, bool) {
	if code == "" || code == NoAbsence {
		return AbsenceType{}, false
	}
	a, ok := t.Absences[code]
	return a, ok
}

// Contract looks up a contract rule, falling back to DefaultContractType.
// mapped is false when the fallback was used.
func (t RuleTables) Contract(code ContractCode) (rule ContractType, mapped bool) {
	c, ok := t.Contracts[code]
	if !ok {
		return DefaultContractType(code), false
	}
	return c, true
}

// AbsenceList returns the absence rules (order unspecified).
func (t RuleTables) AbsenceList() []AbsenceType {
	out := make([]AbsenceType, 0, len(t.Absences))
	for _, a := range t.Absences {
		out = append(out, a)
	}
	return out
}

// ContractList returns the contract rules (order unspecified).
func (t RuleTables) ContractList() []ContractType {
	out := make([]ContractType, 0, len(t.Contracts))
	for _, c := range t.Contracts {
		out = append(out, c)
	}
	return out
}
