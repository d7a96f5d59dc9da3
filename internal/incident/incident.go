package incident

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column names as they appear in the recovery detail export.
const (
	ColYear     = "Year"
	ColMonth    = "Month"
	ColDay      = "Day"
	ColHour     = "Hour"
	ColConYear  = "ConYear"
	ColConMonth = "ConMonth"

	ColManufacturer   = "manufacturer"
	ColModel          = "model"
	ColColour         = "vehicle_colour"
	ColVehicleYear    = "vehicle_year"
	ColPackage        = "product_package"
	ColHardware       = "primary_hardware_type"
	ColIncidentType   = "incident_type"
	ColUserType       = "user_type"
	ColTerminalEvent  = "terminal_event_type_description"
	ColTagOrAsset     = "tag_or_asset_track"
	ColWarrantyBase   = "warranty_base"
	ColDeviceExcl     = "device_exclusion"
	ColBikeExcl       = "bike_exclusion"
	ColFraud          = "fraud"
	ColExclude        = "Exclude"
	ColBusinessSource = "business_source_username"

	ColClientName   = "client_name"
	ColUserName     = "user_name"
	ColRegistration = "primary_registration"

	ColRecovered   = "recovered"
	ColRecovered01 = "Recovered01"
)

// KnownColumns lists every column the dashboard reads, in export order.
var KnownColumns = []string{
	ColYear, ColMonth, ColDay, ColHour, ColConYear, ColConMonth,
	ColManufacturer, ColModel, ColColour, ColVehicleYear, ColPackage, ColHardware,
	ColIncidentType, ColUserType, ColTerminalEvent, ColTagOrAsset,
	ColWarrantyBase, ColDeviceExcl, ColBikeExcl, ColFraud, ColExclude,
	ColBusinessSource, ColClientName, ColUserName, ColRegistration,
	ColRecovered, ColRecovered01,
}

// ErrMissingDimension is matched by MissingColumnError.
var ErrMissingDimension = errors.New("missing dimension")

// MissingColumnError reports a column the dataset does not carry.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing dimension: column %q not in dataset", e.Column)
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingDimension
}

// Record is a single recovery incident. A column absent from Fields is null.
type Record struct {
	Fields      map[string]string
	Recovered01 int
}

// NewRecord builds a record from column/value pairs. Nil-safe on Fields.
func NewRecord(fields map[string]string) Record {
	if fields == nil {
		fields = make(map[string]string)
	}
	return Record{Fields: fields}
}

// Value returns the raw value for col and whether it is non-null.
func (r Record) Value(col string) (string, bool) {
	v, ok := r.Fields[col]
	return v, ok
}

// RecoveredFlag maps a raw "recovered" cell to 1 or 0.
func RecoveredFlag(raw string, ok bool) int {
	if !ok {
		return 0
	}
	if strings.ToLower(strings.TrimSpace(raw)) == "yes" {
		return 1
	}
	return 0
}

// parseFlag reads a stored Recovered01 value ("1", "0", "1.0"). Values that
// are not finite numbers count as not recovered.
func parseFlag(raw string, ok bool) int {
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return 1
}
