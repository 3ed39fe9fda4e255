/*
presets.go - Built-in rule documents

PURPOSE:
  A ready-to-use rule set covering the usual absence and contract types.
  Used by `hours-server seed-rules` when no file is given and by the demo
  scenarios. Real deployments replace it with their own document.

ABSENCE TYPES:
  VAC        Vacation day, counts toward week and year
  SICK       Sick leave, partial hours allowed
  MED        Medical appointment, 20h yearly budget
  SUSP       Unpaid leave, suspends the contract
  COMP_ORD   Time off paid from the ordinary bag
  COMP_HOL   Time off paid from the holiday bag
  COMP_LEAVE Time off paid from the leave bag
  REDUCED    Reduced schedule, deducts theoretical hours

CONTRACT TYPES:
  FT      Full time, all bags
  PT      Part time, no leave bag
  EXEMPT  No bag tracking
*/
package factory

import "github.com/warp/hours-engine/timekeeping"

// DefaultRulesJSON is the built-in rule document.
const DefaultRulesJSON = `{
  "absences": [
    {"code": "VAC", "name": "Vacation", "computes_to_weekly_hours": true, "computes_to_annual_hours": true, "is_vacation": true},
    {"code": "SICK", "name": "Sick leave", "computes_to_weekly_hours": true, "computes_to_annual_hours": true, "allows_partial_hours": true},
    {"code": "MED", "name": "Medical appointment", "computes_to_weekly_hours": true, "computes_to_annual_hours": true, "allows_partial_hours": true, "annual_hour_budget": 20},
    {"code": "SUSP", "name": "Unpaid leave", "suspends_contract": true},
    {"code": "COMP_ORD", "name": "Compensation (ordinary bag)", "computes_to_weekly_hours": true, "allows_partial_hours": true, "affected_bag": "ordinary"},
    {"code": "COMP_HOL", "name": "Compensation (holiday bag)", "computes_to_weekly_hours": true, "allows_partial_hours": true, "affected_bag": "holiday"},
    {"code": "COMP_LEAVE", "name": "Compensation (leave bag)", "computes_to_weekly_hours": true, "allows_partial_hours": true, "affected_bag": "leave"},
    {"code": "REDUCED", "name": "Reduced schedule", "deducts_theoretical_hours": true, "allows_partial_hours": true}
  ],
  "contracts": [
    {"code": "FT", "name": "Full time", "computes_ordinary_bag": true, "computes_holiday_bag": true, "computes_leave_bag": true},
    {"code": "PT", "name": "Part time", "computes_ordinary_bag": true, "computes_holiday_bag": true, "computes_leave_bag": false},
    {"code": "EXEMPT", "name": "Exempt", "computes_ordinary_bag": false, "computes_holiday_bag": false, "computes_leave_bag": false}
  ]
}`

// DefaultRules parses DefaultRulesJSON.
func (f *RuleFactory) DefaultRules() (timekeeping.RuleTables, error) {
	return f.ParseJSON([]byte(DefaultRulesJSON))
}
