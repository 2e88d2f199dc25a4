package flags

const (
	Home  = "home"
	Trace = "trace"

	Log_Level      = "log.level"
	Log_File       = "log.file"
	Log_MaxSize    = "log.max_size"
	Log_MaxBackups = "log.max_backups"
	Log_MaxAge     = "log.max_age"

	Validator_Connect = "validator.connect"
	Validator_Timeout = "validator.timeout"

	RPC_Addr      = "rpc.addr"
	RPC_Workers   = "rpc.workers"
	RPC_RateLimit = "rpc.rate_limit"
	RPC_RateBurst = "rpc.rate_burst"

	Accounts_Unlock   = "accounts.unlock"
	Accounts_Dir      = "accounts.dir"
	Accounts_Password = "accounts.password"

	Chain_ID       = "chain.id"
	Chain_GasLimit = "chain.gas_limit"

	Filters_TTL = "filters.ttl"

	Metrics_Enabled = "metrics.enabled"
)
