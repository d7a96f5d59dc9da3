package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// AccessFlags carry the credentials for a password-protected dashboard.
type AccessFlags struct {
	Token    string `long:"token" env:"RECOVERY_TOKEN" description:"Access token from the login command"`
	Password string `long:"password" description:"Dashboard password (a token is preferred)"`
}

// FilterFlags select incidents. Values within one flag are ORed; different
// flags are ANDed.
type FilterFlags struct {
	// Incident date
	Year  []string `long:"year" description:"Incident year (repeatable)"`
	Month []string `long:"month" description:"Incident month (repeatable)"`
	Day   []string `long:"day" description:"Incident day (repeatable)"`
	Hour  []string `long:"hour" description:"Incident hour (repeatable)"`

	// Contract date
	ConYear  []string `long:"con-year" description:"Contract year (repeatable)"`
	ConMonth []string `long:"con-month" description:"Contract month (repeatable)"`

	// Vehicle
	Manufacturer []string `long:"manufacturer" description:"Manufacturer (repeatable)"`
	Model        []string `long:"model" description:"Model (repeatable)"`
	Colour       []string `long:"colour" description:"Vehicle colour (repeatable)"`
	VehicleYear  []string `long:"vehicle-year" description:"Vehicle year (repeatable)"`
	Package      []string `long:"package" description:"Product package (repeatable)"`
	Hardware     []string `long:"hardware" description:"Primary hardware type (repeatable)"`

	// Incident
	IncidentType []string `long:"incident-type" description:"Incident type (repeatable)"`
	UserType     []string `long:"user-type" description:"User type (repeatable)"`
	Terminal     []string `long:"terminal" description:"Terminal event type (repeatable)"`
	Tag          []string `long:"tag" description:"Tag or asset track (repeatable)"`

	// Flags
	Warranty        []string `long:"warranty" description:"Warranty base (repeatable)"`
	DeviceExclusion []string `long:"device-exclusion" description:"Device exclusion (repeatable)"`
	BikeExclusion   []string `long:"bike-exclusion" description:"Bike exclusion (repeatable)"`
	Fraud           []string `long:"fraud" description:"Fraud flag (repeatable)"`
	Exclude         []string `long:"exclude" description:"Exclude flag (repeatable)"`

	// People
	Rep          []string `long:"rep" description:"Business source user (repeatable)"`
	Client       string   `long:"client" description:"Client name contains (case-insensitive)"`
	User         string   `long:"user" description:"User name contains (case-insensitive)"`
	Registration string   `long:"registration" description:"Registration contains (case-insensitive)"`

	// Smart search
	ManufacturerSearch string   `long:"manufacturer-search" description:"Select every manufacturer containing this text"`
	ManufacturerPick   []string `long:"manufacturer-pick" description:"Keep only these of the searched manufacturers (repeatable)"`
	ModelSearch        string   `long:"model-search" description:"Select every model containing this text"`
	ModelPick          []string `long:"model-pick" description:"Keep only these of the searched models (repeatable)"`
	PackageSearch      string   `long:"package-search" description:"Select every package containing this text"`
	PackagePick        []string `long:"package-pick" description:"Keep only these of the searched packages (repeatable)"`

	FilterFile string `long:"filter-file" description:"YAML file with saved selections"`
	Saved      string `long:"saved" description:"Start from a saved filter"`
}

// ImportCommand loads an incident export into the store.
type ImportCommand struct {
	File string `long:"file" description:"CSV export to import (defaults to data.file)"`

	globals *GlobalFlags
	version string
	sess    *session // injectable for testing; nil means open from config
}

// CalcCommand computes the recovery rate for a selection.
type CalcCommand struct {
	File string `long:"file" description:"Read incidents from this CSV instead of the store"`

	Filters FilterFlags `group:"Filter Options"`
	Access  AccessFlags `group:"Access Options"`

	globals *GlobalFlags
	version string
	sess    *session
}

// ValuesCommand lists filter dimensions or the options of one dimension.
type ValuesCommand struct {
	Dimension string `long:"dimension" description:"Dimension to list options for; omit to list dimensions"`
	Search    string `long:"search" description:"Keep options containing this text"`
	File      string `long:"file" description:"Read incidents from this CSV instead of the store"`

	Access AccessFlags `group:"Access Options"`

	globals *GlobalFlags
	version string
	sess    *session
}

// LoginCommand exchanges the dashboard password for an access token.
type LoginCommand struct {
	Password string `long:"password" description:"Dashboard password (required)"`

	globals *GlobalFlags
	version string
	sess    *session
}

// SaveFilterCommand stores the given filters under a name.
type SaveFilterCommand struct {
	Name    string      `long:"name" description:"Filter name (required)"`
	Filters FilterFlags `group:"Filter Options"`

	globals *GlobalFlags
	version string
	sess    *session
}

// FiltersCommand lists saved filters.
type FiltersCommand struct {
	globals *GlobalFlags
	version string
	sess    *session
}

// DeleteFilterCommand removes a saved filter.
type DeleteFilterCommand struct {
	Name string `long:"name" description:"Filter name (required)"`

	globals *GlobalFlags
	version string
	sess    *session
}

// ReportCommand posts the recovery report to Slack, once or on a schedule.
type ReportCommand struct {
	Schedule bool `long:"schedule" description:"Keep running and post on report.schedule"`
	DryRun   bool `long:"dry-run" description:"Print the report instead of posting it"`

	Filters FilterFlags `group:"Filter Options"`
	Access  AccessFlags `group:"Access Options"`

	globals *GlobalFlags
	version string
	sess    *session
}

// StatusCommand shows dataset and store statistics.
type StatusCommand struct {
	globals *GlobalFlags
	version string
	sess    *session
}

// PurgeCommand deletes all stored data after confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	sess    *session
}
