package messaging

const (
	// GeneralConfigExchange рассылает обновления общей конфигурации всем инстансам.
	GeneralConfigExchange     = "general_config_exchange"
	generalConfigExchangeType = "fanout"
)
