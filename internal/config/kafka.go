package config

type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

func NewKafkaConfig() *KafkaConfig {
	return &KafkaConfig{
		Brokers:  getListEnv("KAFKA_BROKERS"),
		Topic:    getEnv("KAFKA_EXECUTION_TOPIC", "execution.recorded"),
		ClientID: getEnv("KAFKA_CLIENT_ID", "codeprep"),
	}
}

func (k *KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}
