package machine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plantworks/configurizer-core/internal/settings"
)

// KindInjectionMolder is the kind identifier for injection molders.
const KindInjectionMolder = "injection_molder"

// InjectionMolder is a plastic injection molding machine. Accepted setting
// batches are committed as a JSON document at the configured file path.
type InjectionMolder struct {
	filePath string
}

// NewInjectionMolder constructs an injection molder from its declared
// parameters. Required params: "file_path".
func NewInjectionMolder(params map[string]string) (Machine, error) {
	path := params["file_path"]
	if path == "" {
		return nil, fmt.Errorf("%w: injection molder requires file_path", ErrInvalidSpec)
	}
	return &InjectionMolder{filePath: path}, nil
}

// Kind returns the machine kind identifier.
func (m *InjectionMolder) Kind() string {
	return KindInjectionMolder
}

// Schema returns the injection molder's setting definitions.
func (m *InjectionMolder) Schema() settings.Schema {
	return settings.Schema{
		{
			Namespace:   "material",
			Identifier:  "materialName",
			Description: "Material name / resin grade used for the current job.",
			Kind:        settings.KindString,
			Default:     settings.StringValue("PP"),
		},
		{
			Namespace:   "safety",
			Identifier:  "guardsClosedRequired",
			Description: "Require safety guards to be closed before cycle start.",
			Kind:        settings.KindBoolean,
		},
		{
			Namespace:   "process",
			Identifier:  "barrelTemperature",
			Description: "Barrel (melt) temperature setpoint.",
			Kind:        settings.KindNumber,
			Default:     settings.NumberValue(230),
			Unit:        settings.UnitCelsius,
			MinValue:    settings.Bound(150),
			MaxValue:    settings.Bound(350),
		},
		{
			Namespace:   "process",
			Identifier:  "moldTemperature",
			Description: "Mold temperature setpoint.",
			Kind:        settings.KindNumber,
			Default:     settings.NumberValue(60),
			Unit:        settings.UnitCelsius,
			MinValue:    settings.Bound(20),
			MaxValue:    settings.Bound(150),
		},
		{
			Namespace:   "process",
			Identifier:  "injectionPressure",
			Description: "Peak injection pressure limit.",
			Kind:        settings.KindNumber,
			Default:     settings.NumberValue(1200),
			Unit:        settings.UnitBar,
			MinValue:    settings.Bound(0),
			MaxValue:    settings.Bound(2500),
		},
		{
			Namespace:   "process",
			Identifier:  "screwSpeed",
			Description: "Screw rotation speed during plasticizing.",
			Kind:        settings.KindNumber,
			Default:     settings.NumberValue(80),
			Unit:        settings.UnitRPM,
			MinValue:    settings.Bound(0),
			MaxValue:    settings.Bound(500),
		},
		{
			Namespace:   "process",
			Identifier:  "coolingTime",
			Description: "Cooling time before mold opening, no cooling if set to null.",
			Kind:        settings.KindNumber,
			Nullable:    true,
			Unit:        settings.UnitSecond,
		},
	}
}

// committedSetting is the on-disk shape of one accepted batch entry.
// Value and unit are omitted when absent, mirroring the submitted batch.
type committedSetting struct {
	Identifier string          `json:"identifier"`
	Value      *settings.Value `json:"value,omitempty"`
	Unit       settings.Unit   `json:"uom,omitempty"`
}

// ApplySettings validates the batch and writes it to the settings file.
func (m *InjectionMolder) ApplySettings(ctx context.Context, batch []settings.Proposed) ([]settings.Error, error) {
	if errs := settings.Verify(m.Schema(), batch); len(errs) > 0 {
		return errs, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}

	committed := make([]committedSetting, 0, len(batch))
	for i := range batch {
		entry := committedSetting{Identifier: batch[i].Identifier}
		if !batch[i].Value.IsAbsent() {
			v := batch[i].Value
			entry.Value = &v
		}
		entry.Unit = batch[i].Unit
		committed = append(committed, entry)
	}

	data, err := json.MarshalIndent(committed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encoding settings: %w", ErrCommitFailed, err)
	}

	if dir := filepath.Dir(m.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating settings directory: %w", ErrCommitFailed, err)
		}
	}
	if err := os.WriteFile(m.filePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("%w: writing settings file: %w", ErrCommitFailed, err)
	}

	return nil, nil
}
