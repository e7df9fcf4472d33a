package config

// EnvPrefix is handed to envconfig; every field carries its full key.
const EnvPrefix = "HADEEQATI"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv                      = "HADEEQATI_APP_ENV"
	EnvPort                        = "HADEEQATI_APP_PORT"
	EnvDBDSN                       = "HADEEQATI_DB_DSN"
	EnvDBHost                      = "HADEEQATI_DB_HOST"
	EnvDBUser                      = "HADEEQATI_DB_USER"
	EnvDBName                      = "HADEEQATI_DB_NAME"
	EnvRedisURL                    = "HADEEQATI_REDIS_URL"
	EnvJWTSecret                   = "HADEEQATI_JWT_SECRET"
	EnvJWTIssuer                   = "HADEEQATI_JWT_ISSUER"
	EnvJWTExpMins                  = "HADEEQATI_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes      = "HADEEQATI_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite                   = "HADEEQATI_USE_SQLITE"
	EnvStorageMaxUploadMB          = "HADEEQATI_MAX_UPLOAD_MB"
	EnvDiagnosisFallbackConfidence = "HADEEQATI_DIAGNOSIS_FALLBACK_CONFIDENCE"
	EnvLogFormat                   = "HADEEQATI_LOG_FORMAT"
)

const defaultSQLiteDSN = "file:hadeeqati.db?cache=shared&_foreign_keys=on"

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
