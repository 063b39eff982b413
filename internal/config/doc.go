// Package config loads quizreport configuration.
//
// Values resolve in increasing order of precedence:
//
//	1. Default()
//	2. a YAML file (QUIZREPORT_CONFIG_FILE, config.yaml or configs/config.yaml)
//	3. a .env file in the working directory
//	4. QUIZREPORT_* environment variables, e.g. QUIZREPORT_SERVER_PORT=9090
//	   or QUIZREPORT_REPORT_ACC_THRESHOLD=70
//
// The static report tables (class palette, column widths, fills, sheet and
// file names) live in constants.go.
package config
