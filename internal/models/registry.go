package models

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// GasVariable is the SMEAR table/variable pair measuring one gas at one station
type GasVariable struct {
	Table    string `json:"table" yaml:"table"`
	Variable string `json:"variable" yaml:"variable"`
}

// TableVariable returns the "TABLE.variable" identifier
func (gv GasVariable) TableVariable() string {
	return gv.Table + "." + gv.Variable
}

// StationEntry is one station of the registry in its file form
type StationEntry struct {
	Name  string              `yaml:"name"`
	Gases map[Gas]GasVariable `yaml:"gases"`
}

// FigureEntry is one STATFI indicator in its file form
type FigureEntry struct {
	Label string `yaml:"label"`
	Code  string `yaml:"code"`
}

// StationRegistry maps station names to the SMEAR variables measuring each gas.
// It is immutable after construction.
type StationRegistry struct {
	names        []string
	stations     map[string]map[Gas]GasVariable
	byIdentifier map[string]string
}

// NewStationRegistry builds a registry from entries, keeping their order
func NewStationRegistry(entries []StationEntry) (*StationRegistry, error) {
	r := &StationRegistry{
		names:        make([]string, 0, len(entries)),
		stations:     make(map[string]map[Gas]GasVariable, len(entries)),
		byIdentifier: make(map[string]string),
	}

	for _, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("station entry without a name")
		}
		if _, dup := r.stations[entry.Name]; dup {
			return nil, fmt.Errorf("duplicate station %q", entry.Name)
		}

		gases := make(map[Gas]GasVariable, len(entry.Gases))
		for gas, gv := range entry.Gases {
			canonical, err := ParseGas(string(gas))
			if err != nil {
				return nil, fmt.Errorf("station %q: %w", entry.Name, err)
			}
			if _, dup := gases[canonical]; dup {
				return nil, fmt.Errorf("station %q: gas %s listed twice", entry.Name, canonical)
			}
			gases[canonical] = gv
			// first registration wins when two stations share a variable
			if _, taken := r.byIdentifier[gv.TableVariable()]; !taken {
				r.byIdentifier[gv.TableVariable()] = entry.Name
			}
		}

		r.names = append(r.names, entry.Name)
		r.stations[entry.Name] = gases
	}

	return r, nil
}

// Lookup returns the table/variable pair for a station and gas
func (r *StationRegistry) Lookup(station string, gas Gas) (GasVariable, error) {
	gases, ok := r.stations[station]
	if !ok {
		return GasVariable{}, &RegistryError{Registry: "station", Key: station}
	}
	gv, ok := gases[gas]
	if !ok {
		return GasVariable{}, &RegistryError{Registry: "station", Key: station + "/" + gas.Code()}
	}
	return gv, nil
}

// StationName resolves a "TABLE.variable" identifier to its station name
func (r *StationRegistry) StationName(identifier string) (string, error) {
	name, ok := r.byIdentifier[identifier]
	if !ok {
		return "", &RegistryError{Registry: "station", Key: identifier}
	}
	return name, nil
}

// StationsForGas returns the stations measuring a gas, sorted by name
func (r *StationRegistry) StationsForGas(gas Gas) []string {
	out := make([]string, 0, len(r.names))
	for _, name := range r.names {
		if _, ok := r.stations[name][gas]; ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Names returns every station name in registration order
func (r *StationRegistry) Names() []string {
	return append([]string(nil), r.names...)
}

// FigureRegistry maps STATFI display labels to provider figure codes.
// It is immutable after construction.
type FigureRegistry struct {
	labels []string
	codes  map[string]string
}

// NewFigureRegistry builds a registry from entries, keeping their order
func NewFigureRegistry(entries []FigureEntry) (*FigureRegistry, error) {
	r := &FigureRegistry{
		labels: make([]string, 0, len(entries)),
		codes:  make(map[string]string, len(entries)),
	}
	for _, entry := range entries {
		if entry.Label == "" || entry.Code == "" {
			return nil, fmt.Errorf("figure entry needs both label and code")
		}
		if _, dup := r.codes[entry.Label]; dup {
			return nil, fmt.Errorf("duplicate figure label %q", entry.Label)
		}
		r.labels = append(r.labels, entry.Label)
		r.codes[entry.Label] = entry.Code
	}
	return r, nil
}

// Code returns the provider code for a display label
func (r *FigureRegistry) Code(label string) (string, error) {
	code, ok := r.codes[label]
	if !ok {
		return "", &RegistryError{Registry: "figure", Key: label}
	}
	return code, nil
}

// Labels returns the display labels in registration order
func (r *FigureRegistry) Labels() []string {
	return append([]string(nil), r.labels...)
}

var defaultStationEntries = []StationEntry{
	{Name: "Värriö", Gases: map[Gas]GasVariable{
		GasCO2: {Table: "VAR_EDDY", Variable: "av_c"},
		GasSO2: {Table: "VAR_META", Variable: "SO2_1"},
		GasNO:  {Table: "VAR_META", Variable: "NO_1"},
	}},
	{Name: "Hyytiälä", Gases: map[Gas]GasVariable{
		GasCO2: {Table: "HYY_META", Variable: "CO2icos168"},
		GasSO2: {Table: "HYY_META", Variable: "SO2168"},
		GasNO:  {Table: "HYY_META", Variable: "NO168"},
	}},
	{Name: "Kumpula", Gases: map[Gas]GasVariable{
		GasCO2: {Table: "KUM_EDDY", Variable: "av_c_ep"},
		GasSO2: {Table: "KUM_META", Variable: "SO_2"},
		GasNO:  {Table: "KUM_META", Variable: "NO"},
	}},
	{Name: "Siikaneva 1", Gases: map[Gas]GasVariable{
		GasCO2: {Table: "SII1_EDDY", Variable: "av_c"},
	}},
	{Name: "Siikaneva 2", Gases: map[Gas]GasVariable{
		GasCO2: {Table: "SII2_EDDY", Variable: "av_c"},
	}},
	{Name: "Kuivajärvi", Gases: map[Gas]GasVariable{
		GasCO2: {Table: "KVJ_EDDY", Variable: "av_c_LI72"},
	}},
	{Name: "Viikki", Gases: map[Gas]GasVariable{
		GasCO2: {Table: "VII_EDDY", Variable: "av_c"},
	}},
	{Name: "Haltiala", Gases: map[Gas]GasVariable{
		GasCO2: {Table: "HAL_EDDY", Variable: "av_c"},
	}},
}

var defaultFigureEntries = []FigureEntry{
	{Label: "Greenhouse gas emissions, indexed, year 1990 = 100", Code: "Khk_yht_index"},
	{Label: "Intensity of greenhouse gas emissions", Code: "Khk_yht_las"},
	{Label: "Intensity of greenhouse gases, indexed, year 1990 = 100", Code: "Khk_yht_las_index"},
	{Label: "Greenhouse gas emissions 2), CO2 equivalent 1000 t", Code: "Khk_yht"},
}

// DefaultStationRegistry returns the built-in SMEAR station table
func DefaultStationRegistry() *StationRegistry {
	r, err := NewStationRegistry(defaultStationEntries)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultFigureRegistry returns the built-in STATFI greenhouse gas indicators
func DefaultFigureRegistry() *FigureRegistry {
	r, err := NewFigureRegistry(defaultFigureEntries)
	if err != nil {
		panic(err)
	}
	return r
}

// Registries bundles the lookup tables handed to the option layer
type Registries struct {
	Stations *StationRegistry
	Figures  *FigureRegistry
}

// DefaultRegistries returns the built-in tables
func DefaultRegistries() Registries {
	return Registries{
		Stations: DefaultStationRegistry(),
		Figures:  DefaultFigureRegistry(),
	}
}

type registryFile struct {
	Stations []StationEntry `yaml:"stations"`
	Figures  []FigureEntry  `yaml:"figures"`
}

// ParseRegistries decodes a YAML registry document. A section that is absent
// keeps the built-in table.
func ParseRegistries(data []byte) (Registries, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Registries{}, fmt.Errorf("failed to decode registry file: %w", err)
	}

	regs := DefaultRegistries()
	if len(file.Stations) > 0 {
		stations, err := NewStationRegistry(file.Stations)
		if err != nil {
			return Registries{}, fmt.Errorf("invalid station registry: %w", err)
		}
		regs.Stations = stations
	}
	if len(file.Figures) > 0 {
		figures, err := NewFigureRegistry(file.Figures)
		if err != nil {
			return Registries{}, fmt.Errorf("invalid figure registry: %w", err)
		}
		regs.Figures = figures
	}
	return regs, nil
}

// LoadRegistries reads registries from a YAML file; an empty path returns the defaults
func LoadRegistries(path string) (Registries, error) {
	if path == "" {
		return DefaultRegistries(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Registries{}, fmt.Errorf("failed to read registry file: %w", err)
	}
	return ParseRegistries(data)
}
