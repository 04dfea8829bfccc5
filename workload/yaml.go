package workload

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/etauto-an/351PA3/mem"
	"github.com/etauto-an/351PA3/sim"
)

// yamlWorkload is the YAML form of a workload file.
type yamlWorkload struct {
	Processes []yamlProcess `yaml:"processes"`
}

type yamlProcess struct {
	ID       int   `yaml:"id"`
	Arrival  int64 `yaml:"arrival"`
	Lifetime int64 `yaml:"lifetime"`
	Segments []int `yaml:"segments"`
}

// LoadYAMLFile reads a workload described as YAML, with one entry per
// process:
//
//	processes:
//	  - id: 1
//	    arrival: 0
//	    lifetime: 50
//	    segments: [200, 400]
func LoadYAMLFile(path string) ([]*Process, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	processes, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return processes, nil
}

// ParseYAML parses the YAML workload format.
func ParseYAML(data []byte) ([]*Process, error) {
	var doc yamlWorkload
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	processes := make([]*Process, 0, len(doc.Processes))
	for _, p := range doc.Processes {
		processes = append(processes, &Process{
			ID:          mem.PID(p.ID),
			ArrivalTime: sim.VTick(p.Arrival),
			Lifetime:    sim.VTick(p.Lifetime),
			Segments:    p.Segments,
			StartTime:   NotStarted,
		})
	}

	if err := Validate(processes); err != nil {
		return nil, err
	}

	return processes, nil
}
