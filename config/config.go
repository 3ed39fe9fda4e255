/*
Package config loads server configuration.

SOURCES (later wins):
  1. DefaultConfig()
  2. TOML file (optional, path from --config or HOURS_CONFIG)
  3. .env file in the working directory (optional)
  4. Environment: HOURS_PORT, HOURS_DB, HOURS_LOG_LEVEL, HOURS_RULES_FILE,
     HOURS_AUDIT_CUTOFF

FILE FORMAT:
  port = 8080
  database_path = "hours.db"
  log_level = "info"
  rules_file = "rules.toml"
  audit_cutoff = "2025-01-01"

  [vacation]
  base_days = 31
  suspension_days_per_month = 30
  deduction_per_month = 2.5

  [default_year]
  max_annual_hours = 1800
  reference_weekly_hours = 40

  [[years]]
  year = 2025
  max_annual_hours = 1792
  reference_weekly_hours = 40

  [[holidays]]
  date = "2025-12-25"
  name = "Christmas"
  category = "ordinary"

  Dates are quoted strings in YYYY-MM-DD form.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/hours-engine/generic"
	"github.com/warp/hours-engine/timekeeping"
)

type Config struct {
	Port         int    `toml:"port"`
	DatabasePath string `toml:"database_path"`
	LogLevel     string `toml:"log_level"`
	RulesFile    string `toml:"rules_file"`
	AuditCutoff  string `toml:"audit_cutoff"`

	Vacation    VacationConfig  `toml:"vacation"`
	DefaultYear YearConfig      `toml:"default_year"`
	Years       []YearConfig    `toml:"years"`
	Holidays    []HolidayConfig `toml:"holidays"`
}

type VacationConfig struct {
	BaseDays               float64 `toml:"base_days"`
	SuspensionDaysPerMonth float64 `toml:"suspension_days_per_month"`
	DeductionPerMonth      float64 `toml:"deduction_per_month"`
}

type YearConfig struct {
	Year                 int     `toml:"year"`
	MaxAnnualHours       float64 `toml:"max_annual_hours"`
	ReferenceWeeklyHours float64 `toml:"reference_weekly_hours"`
}

type HolidayConfig struct {
	Date     string `toml:"date"`
	Name     string `toml:"name"`
	Category string `toml:"category"`
}

func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		DatabasePath: "hours.db",
		LogLevel:     "info",
		Vacation: VacationConfig{
			BaseDays:               31,
			SuspensionDaysPerMonth: 30,
			DeductionPerMonth:      2.5,
		},
		DefaultYear: YearConfig{
			MaxAnnualHours:       1800,
			ReferenceWeeklyHours: 40,
		},
	}
}

// Load reads the optional TOML file at path, then .env, then environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("HOURS_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HOURS_PORT: %w", err)
		}
		c.Port = port
	}
	c.DatabasePath = getEnv("HOURS_DB", c.DatabasePath)
	c.LogLevel = getEnv("HOURS_LOG_LEVEL", c.LogLevel)
	c.RulesFile = getEnv("HOURS_RULES_FILE", c.RulesFile)
	c.AuditCutoff = getEnv("HOURS_AUDIT_CUTOFF", c.AuditCutoff)
	return nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// Validate checks every derived value parses.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.Cutoff(); err != nil {
		return err
	}
	if _, err := c.AnnualPolicy(); err != nil {
		return err
	}
	if _, err := c.VacationPolicy(); err != nil {
		return err
	}
	if _, err := c.HolidayCalendar(); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Logger builds a logrus logger at the configured level.
func (c *Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}

// Cutoff returns the audit cut-off; zero when unset.
func (c *Config) Cutoff() (generic.TimePoint, error) {
	if c.AuditCutoff == "" {
		return generic.TimePoint{}, nil
	}
	tp, err := generic.ParseDate(c.AuditCutoff)
	if err != nil {
		return generic.TimePoint{}, fmt.Errorf("audit_cutoff: %w", err)
	}
	return tp, nil
}

func (c *Config) AnnualPolicy() (timekeeping.AnnualPolicy, error) {
	fallback, err := c.DefaultYear.settings()
	if err != nil {
		return timekeeping.AnnualPolicy{}, fmt.Errorf("default_year: %w", err)
	}
	policy := timekeeping.AnnualPolicy{Years: map[int]timekeeping.YearSettings{}, Fallback: fallback}
	for i, y := range c.Years {
		s, err := y.settings()
		if err != nil {
			return timekeeping.AnnualPolicy{}, fmt.Errorf("years[%d]: %w", i, err)
		}
		if y.Year == 0 {
			return timekeeping.AnnualPolicy{}, fmt.Errorf("years[%d]: year is required", i)
		}
		policy.Years[y.Year] = s
	}
	return policy, nil
}

func (y YearConfig) settings() (timekeeping.YearSettings, error) {
	max, err := timekeeping.HoursFromFloat("max_annual_hours", y.MaxAnnualHours)
	if err != nil {
		return timekeeping.YearSettings{}, err
	}
	ref, err := timekeeping.HoursFromFloat("reference_weekly_hours", y.ReferenceWeeklyHours)
	if err != nil {
		return timekeeping.YearSettings{}, err
	}
	return timekeeping.YearSettings{Year: y.Year, MaxAnnualHours: max, ReferenceWeeklyHours: ref}, nil
}

func (c *Config) VacationPolicy() (timekeeping.VacationPolicy, error) {
	var p timekeeping.VacationPolicy
	for _, f := range []struct {
		name string
		in   float64
		out  *decimal.Decimal
	}{
		{"vacation.base_days", c.Vacation.BaseDays, &p.BaseDays},
		{"vacation.suspension_days_per_month", c.Vacation.SuspensionDaysPerMonth, &p.SuspensionDaysPerMonth},
		{"vacation.deduction_per_month", c.Vacation.DeductionPerMonth, &p.DeductionPerMonth},
	} {
		v, err := timekeeping.HoursFromFloat(f.name, f.in)
		if err != nil {
			return timekeeping.VacationPolicy{}, err
		}
		*f.out = v
	}
	return p, nil
}

func (c *Config) HolidayCalendar() (*generic.StaticHolidayCalendar, error) {
	holidays := make([]generic.Holiday, 0, len(c.Holidays))
	for i, h := range c.Holidays {
		date, err := generic.ParseDate(h.Date)
		if err != nil {
			return nil, fmt.Errorf("holidays[%d]: %w", i, err)
		}
		category := generic.HolidayCategory(h.Category)
		switch category {
		case generic.HolidayNone, generic.HolidayOrdinary, generic.HolidayOpening:
		default:
			return nil, fmt.Errorf("holidays[%d]: unknown category %q", i, h.Category)
		}
		holidays = append(holidays, generic.Holiday{Date: date, Name: h.Name, Category: category})
	}
	return generic.NewStaticHolidayCalendar(holidays), nil
}

// Apply copies the policies onto a service.
func (c *Config) Apply(svc *timekeeping.Service) error {
	annual, err := c.AnnualPolicy()
	if err != nil {
		return err
	}
	vacation, err := c.VacationPolicy()
	if err != nil {
		return err
	}
	holidays, err := c.HolidayCalendar()
	if err != nil {
		return err
	}
	cutoff, err := c.Cutoff()
	if err != nil {
		return err
	}
	svc.Annual = annual
	svc.Vacation = vacation
	svc.Holidays = holidays
	svc.AuditCutoff = cutoff
	return nil
}
