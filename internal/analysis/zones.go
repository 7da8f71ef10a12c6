package analysis

import (
	"errors"
	"fmt"
	"math"
)

// ZoneModel selects a heart rate zone layout
type ZoneModel string

const (
	Zones3 ZoneModel = "3-zone"
	Zones5 ZoneModel = "5-zone"
	Zones7 ZoneModel = "7-zone"
)

// ZoneModels lists the supported models in display order
var ZoneModels = []ZoneModel{Zones3, Zones5, Zones7}

var (
	ErrUnknownZoneModel = errors.New("unknown zone model")
	ErrInvalidThreshold = errors.New("threshold must be positive")
)

// ParseZoneModel accepts "3", "5", "7" or the full model names
func ParseZoneModel(s string) (ZoneModel, error) {
	switch s {
	case "3", string(Zones3):
		return Zones3, nil
	case "5", string(Zones5):
		return Zones5, nil
	case "7", string(Zones7):
		return Zones7, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownZoneModel, s)
}

// Next cycles to the following model, wrapping around
func (m ZoneModel) Next() ZoneModel {
	for i, z := range ZoneModels {
		if z == m {
			return ZoneModels[(i+1)%len(ZoneModels)]
		}
	}
	return Zones5
}

// Zone is one heart rate band in bpm
type Zone struct {
	ID              string // "zone1".."zone7"
	Name            string
	Min             int
	Max             int
	PercentageLabel string
	Description     string
	Purpose         string
}

// ZoneTable is an ordered set of zones for one model
type ZoneTable struct {
	Model ZoneModel
	FTHR  int
	MaxHR int // top of the last zone
	Zones []Zone
}

// Zone returns the zone with the given ID
func (t ZoneTable) Zone(id string) (Zone, bool) {
	for _, z := range t.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// ZoneFor returns the index of the zone containing bpm, or -1 below zone 1.
// Heart rates above the table land in the last zone.
func (t ZoneTable) ZoneFor(bpm float64) int {
	hr := int(math.Round(bpm))
	if len(t.Zones) == 0 || hr < t.Zones[0].Min {
		return -1
	}
	for i, z := range t.Zones {
		if hr < z.Max || i == len(t.Zones)-1 {
			return i
		}
	}
	return len(t.Zones) - 1
}

type zoneSpec struct {
	name, description, purpose string
	low, high                  float64 // fractions of FTHR; high 0 means max HR
}

var zoneSpecs = map[ZoneModel][]zoneSpec{
	Zones3: {
		{"Easy", "Conversational, fully aerobic", "Base building and recovery", 0.50, 0.82},
		{"Moderate", "Steady, breathing deeper", "Tempo and aerobic power", 0.82, 0.87},
		{"Hard", "At or above threshold", "Threshold and interval work", 0.87, 1.05},
	},
	Zones5: {
		{"Recovery", "Very easy spinning", "Active recovery between hard days", 0.50, 0.72},
		{"Endurance", "All-day aerobic pace", "Aerobic base and fat oxidation", 0.72, 0.82},
		{"Tempo", "Comfortably hard", "Muscular endurance", 0.82, 0.87},
		{"Threshold", "Sustainable for about an hour", "Raise FTP and lactate threshold", 0.87, 0.95},
		{"VO2max", "Short, very hard efforts", "Maximal aerobic capacity", 0.95, 1.05},
	},
	Zones7: {
		{"Active Recovery", "Very easy", "Recovery and warm-up", 0.50, 0.72},
		{"Endurance", "Steady aerobic", "Aerobic base", 0.72, 0.82},
		{"Tempo", "Moderately hard", "Muscular endurance", 0.82, 0.87},
		{"Sweet Spot", "Just below threshold", "Time at high aerobic load", 0.87, 0.92},
		{"Threshold", "Around FTHR", "Lactate threshold", 0.92, 0.97},
		{"VO2max", "Very hard", "Maximal aerobic capacity", 0.97, 1.02},
		{"Anaerobic", "All out", "Anaerobic capacity and sprints", 1.02, 0},
	},
}

// ZonesForModel builds a zone table from a threshold heart rate.
// maxHR <= 0 means unknown; the 7-zone model then estimates it from fthr
// (max ~ fthr / HRMaxHRFactor). A maxHR at or below the zone 7 floor is
// ignored the same way.
func (e *Engine) ZonesForModel(fthr float64, model ZoneModel, maxHR float64) (ZoneTable, error) {
	if fthr <= 0 || math.IsNaN(fthr) || math.IsInf(fthr, 0) {
		return ZoneTable{}, fmt.Errorf("%w: %v", ErrInvalidThreshold, fthr)
	}
	specs, ok := zoneSpecs[model]
	if !ok {
		return ZoneTable{}, fmt.Errorf("%w: %q", ErrUnknownZoneModel, model)
	}

	table := ZoneTable{Model: model, FTHR: int(math.Round(fthr))}
	for i, s := range specs {
		z := Zone{
			ID:          fmt.Sprintf("zone%d", i+1),
			Name:        s.name,
			Min:         int(math.Round(fthr * s.low)),
			Description: s.description,
			Purpose:     s.purpose,
		}
		if s.high > 0 {
			z.Max = int(math.Round(fthr * s.high))
			z.PercentageLabel = fmt.Sprintf("%.0f-%.0f%%", s.low*100, s.high*100)
		} else {
			top := int(math.Round(maxHR))
			if top <= z.Min {
				top = int(math.Round(fthr / e.t.HRMaxHRFactor))
			}
			z.Max = top
			z.PercentageLabel = fmt.Sprintf("%.0f%%+", s.low*100)
		}
		table.Zones = append(table.Zones, z)
	}
	table.MaxHR = table.Zones[len(table.Zones)-1].Max
	return table, nil
}

// AllZones builds every supported model for one threshold
func (e *Engine) AllZones(fthr, maxHR float64) (map[ZoneModel]ZoneTable, error) {
	out := make(map[ZoneModel]ZoneTable, len(ZoneModels))
	for _, m := range ZoneModels {
		table, err := e.ZonesForModel(fthr, m, maxHR)
		if err != nil {
			return nil, err
		}
		out[m] = table
	}
	return out, nil
}
