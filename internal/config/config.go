package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the simulation process.
// Consumed once at startup; the simulation never re-reads it mid-run.
type Config struct {
	LogLevel string `yaml:"log_level"`

	API API `yaml:"api"`

	Region   Region   `yaml:"region"`
	Stations []Point  `yaml:"stations"`
	Scouts   Scouts   `yaml:"scouts"`
	Rescuers Rescuers `yaml:"rescuers"`
	Victims  Victims  `yaml:"victims"`

	Simulation Simulation `yaml:"simulation"`
	Journal    Journal    `yaml:"journal"`
	Comms      Comms      `yaml:"comms"`
}

// API holds the HTTP command interface settings.
type API struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// TokenHash is a bcrypt hash of the bearer token required on mutating
	// endpoints. Empty disables authentication.
	TokenHash string `yaml:"token_hash"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns host:port for net.Listen.
func (a API) Addr() string {
	return fmt.Sprintf("%s:%d", a.BindAddress, a.Port)
}

// Region describes the window layout the rescue region is carved from.
// The station strip is on the left, the legend strip on the right.
type Region struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	StationWidth float64 `yaml:"station_width"`
	LegendWidth  float64 `yaml:"legend_width"`
	Margin       float64 `yaml:"margin"`
}

// RescueWidth returns the width of the middle strip.
func (r Region) RescueWidth() float64 {
	return r.Width - (r.StationWidth + r.LegendWidth)
}

// RescueBounds returns the area victims drift in and scouts sweep.
func (r Region) RescueBounds() orb.Bound {
	return orb.Bound{
		Min: orb.Point{r.StationWidth + r.Margin, r.Margin},
		Max: orb.Point{r.StationWidth + r.RescueWidth() - r.LegendWidth - r.Margin, r.Height - r.Margin},
	}
}

// Point is a plain coordinate pair in YAML.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Scouts configures the UAV class.
type Scouts struct {
	Count           int     `yaml:"count"`
	Speed           float64 `yaml:"speed"`
	DetectionRadius float64 `yaml:"detection_radius"`
}

// Rescuers configures the boat class.
type Rescuers struct {
	Count           int     `yaml:"count"`
	Speed           float64 `yaml:"speed"`
	DetectionRadius float64 `yaml:"detection_radius"`
	Capacity        int     `yaml:"capacity"`
}

// Victims configures victim spawning and drift.
type Victims struct {
	Count              int     `yaml:"count"`
	Speed              float64 `yaml:"speed"`
	HeadingChangeTicks int     `yaml:"heading_change_ticks"` // 60 ticks ≈ 1s at 60 Hz
	MinSeparation      float64 `yaml:"min_separation"`
	SpawnAttempts      int     `yaml:"spawn_attempts"`
}

// Simulation holds tick loop and motion rule settings.
type Simulation struct {
	TickRate         int     `yaml:"tick_rate"`
	ArrivalThreshold float64 `yaml:"arrival_threshold"`
	PatternSpacing   float64 `yaml:"pattern_spacing"` // multiple of detection radius
	Seed             uint64  `yaml:"seed"`            // 0 = seed from clock
}

// TickInterval returns the duration of one tick.
func (s Simulation) TickInterval() time.Duration {
	if s.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(s.TickRate)
}

// Journal configures the event journal backend.
type Journal struct {
	Backend       string         `yaml:"backend"` // memory | sqlite | postgres
	SQLitePath    string         `yaml:"sqlite_path"`
	Database      DatabaseConfig `yaml:"database"`
	QueueSize     int            `yaml:"queue_size"`
	FlushInterval time.Duration  `yaml:"flush_interval"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Comms configures the message overlay.
type Comms struct {
	MessageTTL time.Duration `yaml:"message_ttl"`
}

// Default returns Config with the stock scenario: 10 UAVs, 5 boats, 10 victims.
func Default() Config {
	return Config{
		LogLevel: "info",
		API: API{
			BindAddress:  "127.0.0.1",
			Port:         5000,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Region: Region{
			Width:        1400,
			Height:       800,
			StationWidth: 250,
			LegendWidth:  250,
			Margin:       50,
		},
		Stations: []Point{
			{X: 100, Y: 100},  // NW
			{X: 1100, Y: 100}, // NE
			{X: 600, Y: 400},  // center
			{X: 100, Y: 700},  // SW
			{X: 1100, Y: 700}, // SE
		},
		Scouts: Scouts{
			Count:           10,
			Speed:           0.375,
			DetectionRadius: 50,
		},
		Rescuers: Rescuers{
			Count:           5,
			Speed:           0.375,
			DetectionRadius: 30,
			Capacity:        5,
		},
		Victims: Victims{
			Count:              10,
			Speed:              0.025,
			HeadingChangeTicks: 60,
			MinSeparation:      50,
			SpawnAttempts:      1000,
		},
		Simulation: Simulation{
			TickRate:         60,
			ArrivalThreshold: 5,
			PatternSpacing:   1.5,
		},
		Journal: Journal{
			Backend:       "memory",
			SQLitePath:    "sarsim.db",
			QueueSize:     1024,
			FlushInterval: 250 * time.Millisecond,
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "sarsim",
				Password: "sarsim",
				DBName:   "sarsim",
				SSLMode:  "disable",
			},
		},
		Comms: Comms{
			MessageTTL: 2 * time.Second,
		},
	}
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c Config) Validate() error {
	var errs []error

	b := c.Region.RescueBounds()
	if b.Max[0] <= b.Min[0] || b.Max[1] <= b.Min[1] {
		errs = append(errs, fmt.Errorf("region: rescue bounds %v..%v are empty", b.Min, b.Max))
	}
	if len(c.Stations) == 0 {
		errs = append(errs, errors.New("stations: at least one station is required"))
	}
	if c.Scouts.Count < 0 || c.Rescuers.Count < 0 || c.Victims.Count < 0 {
		errs = append(errs, errors.New("counts must not be negative"))
	}
	if c.Scouts.Speed <= 0 || c.Rescuers.Speed <= 0 || c.Victims.Speed <= 0 {
		errs = append(errs, errors.New("speeds must be positive"))
	}
	if c.Scouts.DetectionRadius <= 0 || c.Rescuers.DetectionRadius <= 0 {
		errs = append(errs, errors.New("detection radii must be positive"))
	}
	if c.Rescuers.Capacity <= 0 {
		errs = append(errs, errors.New("rescuers: capacity must be positive"))
	}
	if c.Victims.HeadingChangeTicks <= 0 {
		errs = append(errs, errors.New("victims: heading_change_ticks must be positive"))
	}
	if c.Simulation.TickRate <= 0 {
		errs = append(errs, errors.New("simulation: tick_rate must be positive"))
	}
	if c.Simulation.ArrivalThreshold <= 0 || c.Simulation.PatternSpacing <= 0 {
		errs = append(errs, errors.New("simulation: arrival_threshold and pattern_spacing must be positive"))
	}
	switch c.Journal.Backend {
	case "", "memory", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("journal: unsupported backend %q", c.Journal.Backend))
	}

	return errors.Join(errs...)
}
