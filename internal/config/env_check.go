package config

import (
	"log/slog"
	"strings"
)

// EnvVar describes one environment variable in the status report.
type EnvVar struct {
	Name        string
	Description string
	Set         bool
}

// EnvStatus lists the variables the selected backend needs but lacks
// (Missing) and the optional ones that are unset (Warnings).
type EnvStatus struct {
	Backend  string
	Missing  []EnvVar
	Warnings []EnvVar
	Present  []EnvVar
}

// Configured reports whether every required variable is present.
func (s EnvStatus) Configured() bool {
	return len(s.Missing) == 0
}

// MissingNames returns the names of the missing required variables.
func (s EnvStatus) MissingNames() []string {
	names := make([]string, len(s.Missing))
	for i, v := range s.Missing {
		names[i] = v.Name
	}
	return names
}

// CheckEnvironment reports the variables required by the configured backend
// and the optional integrations.
func CheckEnvironment(c *Config) EnvStatus {
	st := EnvStatus{Backend: c.DataBackend}

	required := []EnvVar{}
	switch c.DataBackend {
	case BackendPostgres:
		required = append(required, EnvVar{Name: "DATABASE_URL", Description: "URL de conexão do PostgreSQL", Set: c.DatabaseURL != ""})
	case BackendSQLite:
		required = append(required, EnvVar{Name: "SQLITE_DB_PATH", Description: "Caminho do arquivo SQLite", Set: c.SQLiteDBPath != ""})
	}

	optional := []EnvVar{
		{Name: "AMQP_URL", Description: "Fila de sincronização com a planilha", Set: c.AMQPURL != ""},
		{Name: "GOOGLE_SPREADSHEET_ID", Description: "Planilha do Google para exportação", Set: c.GoogleSpreadsheetID != ""},
		{Name: "GOOGLE_SERVICE_ACCOUNT_JSON", Description: "Credenciais da conta de serviço do Google",
			Set: c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != ""},
	}

	for _, v := range required {
		if v.Set {
			st.Present = append(st.Present, v)
		} else {
			st.Missing = append(st.Missing, v)
		}
	}
	for _, v := range optional {
		if v.Set {
			st.Present = append(st.Present, v)
		} else {
			st.Warnings = append(st.Warnings, v)
		}
	}
	return st
}

// LogEnvironmentStatus writes the report at startup.
func LogEnvironmentStatus(logger *slog.Logger, st EnvStatus) {
	if !st.Configured() {
		logger.Error("Required environment variables are missing",
			"backend", st.Backend,
			"missing", strings.Join(st.MissingNames(), ","))
	}
	for _, v := range st.Warnings {
		logger.Warn("Optional environment variable not set", "name", v.Name, "description", v.Description)
	}
	if st.Configured() {
		logger.Info("Environment check passed", "backend", st.Backend, "present", len(st.Present))
	}
}
