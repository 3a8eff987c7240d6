package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionDatabaseTransactionFailed = "database_transaction_failed"

	ActionCacheTierProbe    = "cache_tier_probe"
	ActionCacheTierDegraded = "cache_tier_degraded"
	ActionGeofenceProcess   = "geofence_process"
	ActionAlertDispatch     = "alert_dispatch"

	ActionSettingsResolve = "settings_resolve"
	ActionSettingsUpdate  = "settings_update"
	ActionLocationRecord  = "location_record"
	ActionFamilyRead      = "family_locations_read"
)
