package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile  string
	LogLevel string
	Quiet    bool

	// Server overrides
	Provider string
	APIURL   string
	Model    string

	// Paths
	Dictionary string
	CharSource string
	CharDict   string
	Fixups     string

	// Translation flags
	FilesFrom       string
	ContinueOnError bool
	CacheNames      bool

	// Cleanup flags
	DryRun bool
	Backup bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:   "warn",
		Provider:   "openai",
		Dictionary: "dictionary.json",
		CharSource: "character_system_text.json",
		CharDict:   "character_system_text_dict.json",
	}
}
