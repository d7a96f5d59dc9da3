package filter

import "github.com/vaneschanro-gif/recovery-dashboard/internal/incident"

// Kind is how a dimension is matched.
type Kind int

const (
	// Categorical dimensions match by membership in a set of accepted values.
	Categorical Kind = iota
	// Text dimensions match by case-insensitive substring.
	Text
)

func (k Kind) String() string {
	switch k {
	case Categorical:
		return "categorical"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Dimension describes one filterable column.
type Dimension struct {
	Name    string
	Column  string
	Label   string
	Section string
	Kind    Kind

	// Temporal dimensions define the period baseline for focus mode.
	Temporal bool
	// Group dimensions engage focus mode and accept smart search.
	Group bool
}

const (
	sectionIncidentDate = "Incident Date"
	sectionContractDate = "Contract Date"
	sectionVehicle      = "Vehicle & Product"
	sectionIncident     = "Incident Details"
	sectionFlags        = "Exclusions & Flags"
	sectionPeople       = "People & Sales"
)

var catalog = []Dimension{
	{Name: "year", Column: incident.ColYear, Label: "Year", Section: sectionIncidentDate, Temporal: true},
	{Name: "month", Column: incident.ColMonth, Label: "Month", Section: sectionIncidentDate, Temporal: true},
	{Name: "day", Column: incident.ColDay, Label: "Day", Section: sectionIncidentDate},
	{Name: "hour", Column: incident.ColHour, Label: "Hour", Section: sectionIncidentDate},

	{Name: "con_year", Column: incident.ColConYear, Label: "Contract Year", Section: sectionContractDate},
	{Name: "con_month", Column: incident.ColConMonth, Label: "Contract Month", Section: sectionContractDate},

	{Name: "manufacturer", Column: incident.ColManufacturer, Label: "Manufacturer", Section: sectionVehicle, Group: true},
	{Name: "model", Column: incident.ColModel, Label: "Model", Section: sectionVehicle, Group: true},
	{Name: "colour", Column: incident.ColColour, Label: "Colour", Section: sectionVehicle},
	{Name: "vehicle_year", Column: incident.ColVehicleYear, Label: "Vehicle Year", Section: sectionVehicle},
	{Name: "package", Column: incident.ColPackage, Label: "Product Package", Section: sectionVehicle, Group: true},
	{Name: "hardware", Column: incident.ColHardware, Label: "Hardware Type", Section: sectionVehicle},

	{Name: "incident_type", Column: incident.ColIncidentType, Label: "Incident Type", Section: sectionIncident},
	{Name: "user_type", Column: incident.ColUserType, Label: "User Type", Section: sectionIncident},
	{Name: "terminal", Column: incident.ColTerminalEvent, Label: "Terminal Event", Section: sectionIncident},
	{Name: "tag", Column: incident.ColTagOrAsset, Label: "Tag/Asset Track", Section: sectionIncident},

	{Name: "warranty", Column: incident.ColWarrantyBase, Label: "Warranty Base", Section: sectionFlags},
	{Name: "device_exclusion", Column: incident.ColDeviceExcl, Label: "Device Exclusion", Section: sectionFlags},
	{Name: "bike_exclusion", Column: incident.ColBikeExcl, Label: "Bike Exclusion", Section: sectionFlags},
	{Name: "fraud", Column: incident.ColFraud, Label: "Fraud", Section: sectionFlags},
	{Name: "exclude", Column: incident.ColExclude, Label: "Exclude Flag", Section: sectionFlags},

	{Name: "rep", Column: incident.ColBusinessSource, Label: "Business Source User", Section: sectionPeople},
	{Name: "client", Column: incident.ColClientName, Label: "Client Name", Section: sectionPeople, Kind: Text},
	{Name: "user", Column: incident.ColUserName, Label: "User Name", Section: sectionPeople, Kind: Text},
	{Name: "registration", Column: incident.ColRegistration, Label: "Registration", Section: sectionPeople, Kind: Text},
}

var byName = func() map[string]Dimension {
	m := make(map[string]Dimension, len(catalog))
	for _, d := range catalog {
		m[d.Name] = d
	}
	return m
}()

// Dimensions returns the filter catalog in display order.
func Dimensions() []Dimension {
	out := make([]Dimension, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a dimension by name.
func Lookup(name string) (Dimension, bool) {
	d, ok := byName[name]
	return d, ok
}
