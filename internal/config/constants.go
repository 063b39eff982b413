package config

import "time"

// Application constants
const (
	AppName    = "Quiz Report"
	AppVersion = "1.0.0"
	EnvPrefix  = "QUIZREPORT"

	// Environment variable naming an explicit YAML config file
	ConfigFileEnv = "QUIZREPORT_CONFIG_FILE"
	DotEnvFile    = ".env"
)

// Source export contract
const (
	ParticipantSheet   = "Participant Data"
	HeaderFirstName    = "First Name"
	HeaderLastName     = "Last Name"
	HeaderClassName    = "Class Name"
	HeaderAccuracy     = "Accuracy"
	SourceLabelDivider = "-"
	WorkbookExtension  = ".xlsx"
	OfficeLockPrefix   = "~$"
)

// Report output
const (
	ConsolidatedSheetName = "Dados_Consolidados"
	ConsolidatedFileName  = "dados_consolidados.xlsx"
	ConsolidatedCSVName   = "dados_consolidados.csv"
	XLSXContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	CSVContentType        = "text/csv; charset=utf-8"
	MaxSheetNameLength    = 31

	// Default pass mark for the ACC Total column
	DefaultAccThreshold = 60.0

	// Parameter bounds accepted by the presenters
	MinScalePercent = 0.0
	MaxScalePercent = 100.0
)

// Column widths in character units
const (
	WidthClassName   = 90.0
	WidthStudentName = 50.0
	WidthDefault     = 20.0
)

// Fill colors (RGB hex, no leading #)
const (
	HeaderFillColor = "BDD7EE"
	PassFillColor   = "C6EFCE"
	FailFillColor   = "FFC7CE"
	BorderColor     = "000000"
)

// ClassPalette holds the pastel fills assigned to classes by first appearance.
// Index i mod len(ClassPalette) selects the fill for the i-th class.
var ClassPalette = []string{
	"FFF2CC",
	"DDEBF7",
	"E2EFDA",
	"FCE4D6",
	"EDE7F6",
	"FFF9C4",
	"E0F7FA",
	"F8D7E3",
	"DCEDC8",
	"FFE0B2",
}

// Upload limits
const (
	DefaultMaxFiles       = 50
	DefaultMaxUploadBytes = 32 << 20
	MultipartMemoryBytes  = 8 << 20

	// Allowance for multipart boundaries and form fields on top of the files
	MultipartOverheadBytes = 1 << 20
)

// Timeouts
const (
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
