package application

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

// Logical field names of the device table.
const (
	FieldName     = "name"
	FieldParentID = "parentId"
	FieldHeadName = "headName"
	FieldCanHead  = "canBeHead"
	FieldPower    = "power"
	FieldFullPath = "fullPath"
	FieldHeadPath = "headPath"
	FieldLevel1   = "level1"
	FieldLevel2   = "level2"
	FieldLevel3   = "level3"
)

// columnAliases maps each logical field to its accepted column names,
// case-sensitive, first match wins. These are the spellings the host
// tables are known to use.
var columnAliases = map[string][]string{
	FieldName:     {"deviceName", "NMO_BaseName", "name"},
	FieldParentID: {"parentId", "parent_id"},
	FieldHeadName: {"headDeviceName", "HeadDeviceName", "ngHeadDevice"},
	FieldCanHead:  {"canBeHead", "icanbeheadunit"},
	FieldPower:    {"power", "Power"},
	FieldFullPath: {"fullpath"},
	FieldHeadPath: {"onlyGUpath"},
	FieldLevel1:   {"level1"},
	FieldLevel2:   {"level2"},
	FieldLevel3:   {"level3"},
}

// Snapshot is the row-oriented form of one loaded table.
type Snapshot struct {
	Devices []hierarchy.Device
	// Columns records, per logical field, the concrete column name the
	// snapshot matched. Updates are addressed to these columns.
	Columns map[string]string
}

// Column returns the concrete column for a logical field, falling back to
// the field's first alias when the snapshot did not carry the column.
func (s *Snapshot) Column(field string) string {
	if s != nil {
		if name, ok := s.Columns[field]; ok {
			return name
		}
	}
	aliases := columnAliases[field]
	if len(aliases) == 0 {
		return field
	}
	return aliases[0]
}

// LoadSnapshot converts a columnar snapshot into an ordered device list.
// Parent sentinels (absent, null, 0, -1) are normalized to NoParent and
// unparsable or negative powers are reported as diagnostics and zeroed.
func LoadSnapshot(input hierarchy.Columnar, diags *hierarchy.Diagnostics) (*Snapshot, error) {
	if input == nil {
		return nil, hierarchy.ErrInvalidSnapshot
	}
	ids, ok := input[hierarchy.IDColumn]
	if !ok {
		return nil, hierarchy.ErrMissingIDColumn
	}

	columns := make(map[string]string, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if _, present := input[alias]; present {
				columns[field] = alias
				break
			}
		}
	}

	counts := make(map[string]int)
	devices := make([]hierarchy.Device, 0, len(ids))
	for row := range ids {
		rowID, ok := asInt64(ids[row])
		if !ok || rowID <= 0 {
			return nil, fmt.Errorf("%w: bad id at row %d", hierarchy.ErrInvalidSnapshot, row)
		}
		device := hierarchy.Device{RowID: rowID, ParentID: hierarchy.NoParent}

		for field, column := range columns {
			cell := input.Cell(column, row)
			if cell == nil {
				continue
			}
			counts[field]++
			switch field {
			case FieldName:
				device.Name = asString(cell)
			case FieldParentID:
				device.ParentID = normalizeParent(cell)
			case FieldHeadName:
				device.HeadName = asString(cell)
			case FieldCanHead:
				device.CanBeHead = asBool(cell)
			case FieldPower:
				power, valid, absent := asPower(cell)
				if absent {
					continue
				}
				if !valid {
					if diags != nil {
						diags.InvalidPowers = append(diags.InvalidPowers, hierarchy.InvalidPower{
							RowID: rowID,
							Raw:   asString(cell),
						})
					}
					power = 0
				}
				device.Power = power
				device.HasPower = true
			case FieldFullPath:
				device.StoredFull = asString(cell)
			case FieldHeadPath:
				device.StoredHead = asString(cell)
			case FieldLevel1:
				device.StoredL1 = asString(cell)
			case FieldLevel2:
				device.StoredL2 = asString(cell)
			case FieldLevel3:
				device.StoredL3 = asString(cell)
			}
		}
		devices = append(devices, device)
	}

	if diags != nil {
		diags.CountsPerField = counts
	}
	return &Snapshot{Devices: devices, Columns: columns}, nil
}

func normalizeParent(cell any) int64 {
	id, ok := asInt64(cell)
	if !ok || id == 0 || id == -1 {
		return hierarchy.NoParent
	}
	return id
}

func asInt64(cell any) (int64, bool) {
	switch v := cell.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case float32:
		return asInt64(float64(v))
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func asString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asBool(cell any) bool {
	switch v := cell.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case string:
		trimmed := strings.TrimSpace(strings.ToLower(v))
		return trimmed == "true" || trimmed == "1" || trimmed == "yes"
	default:
		return false
	}
}

// asPower parses a power cell permissively. It returns (value, valid,
// absent); NaN, infinite and negative values are invalid, empty strings
// absent.
func asPower(cell any) (float64, bool, bool) {
	var value float64
	switch v := cell.(type) {
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	case string:
		trimmed := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
		if trimmed == "" {
			return 0, true, true
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false, false
		}
		value = parsed
	default:
		return 0, false, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, false, false
	}
	return value, true, false
}
