// Package config loads the offgas configuration.
//
// # Configuration Sources
//
// Values are layered, later sources winning:
//
//	1. Defaults (Default)
//	2. YAML file: the path given to Load, OFFGAS_CONFIG, ./offgas.yaml,
//	   ./configs/offgas.yaml or offgas.yaml next to the executable
//	3. A .env file in the working directory
//	4. Environment variables with the OFFGAS prefix
//
// # Environment Variables
//
//	OFFGAS_INPUT_WORKBOOK=run.xlsx
//	OFFGAS_RUN_START="2023-10-25 13:47:00"
//	OFFGAS_RUN_CONSTANTS_LAG=10
//	OFFGAS_OUTPUT_DIRECTORY=output
//	OFFGAS_LOGGING_LEVEL=debug
//	OFFGAS_SERVER_PORT=8080
//
// Phases and sheet names are only read from the YAML file.
//
// # Validation
//
// Field constraints are checked with go-playground/validator; the process
// constants and phases carry their own Validate methods.
package config
