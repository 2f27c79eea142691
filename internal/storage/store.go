package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/sim"
	"github.com/san-kum/ljsim/internal/trajectory"
)

const (
	metadataFile   = "metadata.json"
	propertiesFile = "properties.csv"
	trajectoryFile = "trajectory.xyz"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Method       string             `json:"method"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Steps        int                `json:"steps"`
	StepsTaken   int                `json:"steps_taken"`
	NumParticles int                `json:"num_particles"`
	BoxLength    float64            `json:"box_length"`
	Accepted     int                `json:"accepted,omitempty"`
	Attempted    int                `json:"attempted,omitempty"`
	PairEnergy   float64            `json:"pair_energy"`
	PairVirial   float64            `json:"pair_virial"`
	EnergyDrift  float64            `json:"energy_drift,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
	Config       *config.Config     `json:"config"`
}

// Create makes a fresh run directory and returns its id.
func (s *Store) Create(method string) (string, error) {
	runID := fmt.Sprintf("%s_%d", method, time.Now().UnixNano())
	if err := os.MkdirAll(filepath.Join(s.baseDir, runID), 0755); err != nil {
		return "", err
	}
	return runID, nil
}

// TrajectoryPath is where the run's XYZ frames live.
func (s *Store) TrajectoryPath(runID string) string {
	return filepath.Join(s.baseDir, runID, trajectoryFile)
}

// Save writes metadata.json and properties.csv for a finished run.
func (s *Store) Save(runID string, cfg *config.Config, numParticles int, boxLength float64, result *sim.Result, metrics map[string]float64) error {
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	meta := RunMetadata{
		ID:           runID,
		Method:       result.Method,
		Timestamp:    time.Now(),
		Seed:         cfg.Seed,
		Steps:        cfg.Steps,
		StepsTaken:   result.StepsTaken,
		NumParticles: numParticles,
		BoxLength:    boxLength,
		Accepted:     result.Accepted,
		Attempted:    result.Attempted,
		PairEnergy:   result.PairEnergy,
		PairVirial:   result.PairVirial,
		EnergyDrift:  result.EnergyDrift,
		Metrics:      metrics,
		Config:       cfg,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, propertiesFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	return WriteCSV(csvFile, result.Method, result.Reports)
}

// Columns returns the property table header for a method.
func Columns(method string) []string {
	if method == sim.MethodMonteCarlo {
		return []string{"step", "energy", "pressure", "acceptance_rate", "max_disp"}
	}
	return []string{"step", "energy", "pressure", "kinetic", "total", "temperature"}
}

// WriteCSV writes reports as a table with the method's columns.
func WriteCSV(w io.Writer, method string, reports []sim.Properties) error {
	cw := csv.NewWriter(w)
	header := Columns(method)
	if err := cw.Write(header); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, p := range reports {
		row := []string{strconv.Itoa(p.Step), format(p.Energy), format(p.Pressure)}
		if method == sim.MethodMonteCarlo {
			row = append(row, format(p.AcceptanceRate), format(p.MaxDisp))
		} else {
			row = append(row, format(p.Kinetic), format(p.Total), format(p.Temperature))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadProperties reads the property table back into reports.
func (s *Store) LoadProperties(runID string) ([]sim.Properties, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, propertiesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Properties{}, nil
	}

	header := records[0]
	props := make([]sim.Properties, 0, len(records)-1)
	for i, record := range records[1:] {
		p := sim.Properties{Method: meta.Method}
		for j, col := range header {
			if j >= len(record) {
				break
			}
			if col == "step" {
				step, err := strconv.Atoi(record[j])
				if err != nil {
					return nil, fmt.Errorf("%s row %d: %w", propertiesFile, i+1, err)
				}
				p.Step = step
				continue
			}
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", propertiesFile, i+1, err)
			}
			setColumn(&p, col, v)
		}
		props = append(props, p)
	}
	return props, nil
}

func setColumn(p *sim.Properties, col string, v float64) {
	switch col {
	case "energy":
		p.Energy = v
	case "pressure":
		p.Pressure = v
	case "acceptance_rate":
		p.AcceptanceRate = v
	case "max_disp":
		p.MaxDisp = v
	case "kinetic":
		p.Kinetic = v
	case "total":
		p.Total = v
	case "temperature":
		p.Temperature = v
	}
}

// LoadFrames reads every trajectory frame of a run.
func (s *Store) LoadFrames(runID string) ([][]dynamo.Vec3, error) {
	f, err := os.Open(s.TrajectoryPath(runID))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return trajectory.ReadFrames(f)
}
