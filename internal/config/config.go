package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client against the registry backend.
var UserAgent = "CursorCRM-Birthdays/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "CursorCRM Birthdays"
	AppID          = "com.cursorcrm.birthday-office"
	KeyringService = "com.cursorcrm.birthday-office"
	LogFileName    = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs and the config file.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagListen       = "listen"
	FlagImport       = "import"
	FlagSetKey       = "set-key"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescConfig   = "Path to the YAML configuration file"
	FlagDescListen   = "HTTP listen address (overrides config file)"
	FlagDescImport   = "Serve the roster from a local .vcf/.vcard file instead of the hosted registry"
	FlagDescSetKey   = "Read a registry service key from stdin, store it in the OS keyring and exit"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Calendar & View Defaults
// -----------------------------------------------------------------------------

const (
	// MonthMin and MonthMax bound the zero-based month index used across the
	// engine and view layers (0 = January, 11 = December).
	MonthMin = 0
	MonthMax = 11

	MonthsPerYear = 12
	DaysPerWeek   = 7

	SortAsc  = "asc"
	SortDesc = "desc"

	ViewModeList     = "list"
	ViewModeCalendar = "calendar"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultRefreshCron = "*/30 * * * *"
	DefaultLanguage    = "es"
	DefaultLeapYear    = 2000 // Leap year fallback for truncated dates like --02-29
	DefaultConfigPath  = "birthday-office.yaml"
)

// SupportedLanguages defines the available report/export languages (ISO 639-1).
var SupportedLanguages = []string{"es", "en"}

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//CursorCRM//Birthday Calendar//ES"
	ICalCalName = "Cumpleaños de Clientes"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "cursorcrm"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropDuration   = "DURATION"
	PropRRule      = "RRULE"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"

	// ICalEventDuration renders as the all-day DURATION:P1D the calendar
	// clients expect. The value is set verbatim to avoid PT24H forms.
	ICalEventDuration = "P1D"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Export Formats
// -----------------------------------------------------------------------------

const (
	// CSV report column headers, fixed order and literal labels.
	CSVHeaderID    = "ID"
	CSVHeaderFirst = "Nombre"
	CSVHeaderLast  = "Apellido"
	CSVHeaderBirth = "Fecha de Nacimiento"
	CSVHeaderEmail = "Email"
	CSVHeaderPhone = "Teléfono"

	// DateFormatCSV is the DD/MM/YYYY birth date rendering in CSV rows.
	DateFormatCSV = "02/01/2006"

	// Suggested download metadata handed to the file-save collaborator.
	MimeCSV           = "text/csv;charset=utf-8;"
	MimeICS           = "text/calendar;charset=utf-8;"
	FormatCSVReport   = "reporte-cumpleanos-%s-%d.csv"
	FileNameICSExport = "cumpleanos-clientes.ics"

	// FormatUID yields {customerID}-{year}@{domain}, unique per client per
	// generation year so repeated exports do not collide in calendar clients.
	FormatUID = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used when parsing registry rows and vCard BDAY fields.
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethodsRead  = "GET, HEAD"
	AllowedMethodsPost  = "POST"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB roster ceiling
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"

	// Registry REST surface (hosted BaaS).
	RegistryClientsPath  = "/rest/v1/clients"
	RegistryClientsQuery = "select=*&order=last_name.asc"
	HeaderAPIKey         = "apikey"
	HeaderAuthorization  = "Authorization"
	BearerPrefix         = "Bearer "

	// HTTP routes served by this process.
	RouteHealth        = "/health"
	RouteFeedICS       = "/birthdays.ics"
	RouteReportCSV     = "/birthdays.csv"
	RouteCalendar      = "/calendar"
	RouteView          = "/view"
	RouteViewMonth     = "/view/month"
	RouteViewMonthNext = "/view/month/next"
	RouteViewMonthPrev = "/view/month/previous"
	RouteViewMode      = "/view/mode"
	RouteViewSort      = "/view/sort"

	QueryParamMonth = "month"
	QueryParamYear  = "year"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderContentDisp     = "Content-Disposition"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextCSV         = "text/csv; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	FormatETag       = `"%s"`
	FormatAttachment = `attachment; filename=%s`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrMonthRange       = "month index out of range (want 0-11)"
	ErrConfigPathEmpty  = "config path is empty"
	ErrConfigNil        = "config is nil"
	ErrRegistryURLEmpty = "configuration error: registry base URL is empty"
	ErrRequestCreate    = "failed to create request"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrListenRequired   = "listen address is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrRosterFetch      = "failed to fetch client roster"
	ErrRosterDecode     = "failed to decode client roster"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrVCardExt         = "unsupported roster file extension (want .vcf or .vcard)"
	ErrVCardOpen        = "failed to open vCard file"
	ErrKeyEmpty         = "service key is empty (pass it on stdin)"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrCronSchedule     = "invalid refresh cron expression"
	ErrKeyringGet       = "failed to read service key from keyring"
	ErrKeyringSet       = "failed to store service key in keyring"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgBadMonth     = "month must be an integer between 0 and 11"
	HTTPMsgBadYear      = "year must be a positive integer"
	HTTPMsgBadMode      = "mode must be 'list' or 'calendar'"
	HTTPMsgBadSort      = "sort must be 'asc' or 'desc'"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSummary = "🎂 Cumpleaños de %s"
	FallbackName    = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when the
	// roster produces no events, so feed clients never see an invalid body.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgRosterFetched = "Roster fetched"
	MsgImportMode    = "Serving roster from local vCard file"
	MsgKeyStored     = "Service key stored in the OS keyring"
	MsgSyncStarted   = "Roster synchronization started..."
	MsgSyncFailed    = "Roster synchronization failed"
	MsgSyncSuccess   = "Roster synchronization completed"
	MsgWorkerStart   = "Refresh scheduler started"
	MsgWorkerStop    = "Refresh scheduler stopping due to context cancellation"
	MsgAppStop       = "Application stopped gracefully"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar feed cache updated"
	MsgSkippedRow    = "Skipping client with invalid birth date"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgGenSuccess    = "Calendar generation successful"
	MsgFeedEncoded   = "iCalendar feed encoded"
	MsgMonthChanged  = "Selected month changed"
	MsgModeChanged   = "View mode changed"
	MsgOrderChanged  = "Sort order changed"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgBdayToday     = "Birthday found today"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyListen    = "listen"
	LogKeyCron      = "cron"
	LogKeyMonth     = "month"
	LogKeyYear      = "year"
	LogKeyMode      = "mode"
	LogKeyOrder     = "order"
	LogKeyTotal     = "total_clients"
	LogKeyFound     = "birthdays_found"
	LogKeyToday     = "birthdays_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyCustomer  = "customer_id"
	LogKeyDOB       = "date_of_birth"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "build_date"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine   = "engine"
	CompExport   = "export"
	CompRegistry = "registry"
	CompServer   = "server"
	CompView     = "view"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
)
