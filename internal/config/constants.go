package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookclub.db"

	// DefaultFilesDir is the default directory for uploaded book files
	DefaultFilesDir = "./files"

	// DefaultParagraphsPerPage is the default reader page size
	DefaultParagraphsPerPage = 12
)
