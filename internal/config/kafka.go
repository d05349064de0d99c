package config

type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES,required" envSeparator:","`
	// Group is the consumer group; producers ignore it.
	Group string `env:"KAFKA_GROUP" envDefault:"pricetracker"`
}
