package config

import (
	"github.com/RoyceAzure/lab/parkeat/internal/constants"
	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", string(constants.Dev))

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.prefix", "parkeat")
	v.SetDefault("storage.db.host", "localhost")
	v.SetDefault("storage.db.port", "5432")
	v.SetDefault("storage.db.user", "parkeat")
	v.SetDefault("storage.db.password", "")
	v.SetDefault("storage.db.name", "parkeat")

	v.SetDefault("session.auth_delay", constants.DefaultAuthDelay)

	v.SetDefault("cart.service_fee_percent", constants.DefaultServiceFeePercent)
	v.SetDefault("cart.min_service_fee", constants.DefaultMinServiceFee)

	v.SetDefault("order.progress_interval", constants.DefaultProgressInterval)
	v.SetDefault("order.estimated_delivery", constants.DefaultEstimatedDelivery)
	v.SetDefault("order.notify_status_changes", true)

	v.SetDefault("checkout.payment_delay", constants.DefaultPaymentDelay)

	v.SetDefault("location.provider", "static")
	v.SetDefault("location.timeout", constants.DefaultLocationTimeout)
	v.SetDefault("location.max_age", constants.DefaultLocationMaxAge)
	v.SetDefault("location.static.lat", 40.4172)
	v.SetDefault("location.static.lng", -3.7041)
	v.SetDefault("location.static.accuracy", 20.0)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "parkeat.order-events")
	v.SetDefault("kafka.batch_timeout", "100ms")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.capacity", 5)
	v.SetDefault("rate_limit.rate_per_second", 1.0)
}
