package store

// Setting keys seeded by the v1 migration.
const (
	KeyDefaultSemester = "default_semester" // view selected on startup
	KeyWeightCap       = "weight_cap"       // "off" or "warn"
	KeyDecimals        = "decimals"         // display precision for marks
	KeyDataDir         = "data_dir"         // empty = default year-file directory
)

type Setting struct {
	Key   string
	Value string
}
