package adapter

import (
	"errors"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
)

// Config descreve a conexão com o cluster Kafka.
type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string
}

func (c Config) validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka: at least one broker is required")
	}
	return nil
}

// NewSaramaSubscriberConfig lê desde o offset mais antigo e reporta erros de consumo.
func NewSaramaSubscriberConfig(clientID string) *sarama.Config {
	saramaConfig := kafka.DefaultSaramaSubscriberConfig()
	saramaConfig.Version = sarama.V1_0_0_0
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.ClientID = clientID
	return saramaConfig
}

// NewSaramaReplySubscriberConfig lê só mensagens novas. Serve a grupos de
// resposta, onde o histórico não interessa a quem acabou de subir.
func NewSaramaReplySubscriberConfig(clientID string) *sarama.Config {
	saramaConfig := NewSaramaSubscriberConfig(clientID)
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	return saramaConfig
}

func NewPublisher(cfg Config, logger watermill.LoggerAdapter) (*kafka.Publisher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.Brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, logger)
}

func NewSubscriber(cfg Config, logger watermill.LoggerAdapter) (*kafka.Subscriber, error) {
	return newSubscriber(cfg, NewSaramaSubscriberConfig(cfg.ClientID), logger)
}

// NewReplySubscriber cria o subscriber das respostas de consulta. cfg.ConsumerGroup
// deve ser estável e exclusivo da instância.
func NewReplySubscriber(cfg Config, logger watermill.LoggerAdapter) (*kafka.Subscriber, error) {
	return newSubscriber(cfg, NewSaramaReplySubscriberConfig(cfg.ClientID), logger)
}

func newSubscriber(cfg Config, saramaConfig *sarama.Config, logger watermill.LoggerAdapter) (*kafka.Subscriber, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.ConsumerGroup == "" {
		return nil, errors.New("kafka: consumer group is required")
	}
	return kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.Brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		ConsumerGroup:         cfg.ConsumerGroup,
		OverwriteSaramaConfig: saramaConfig,
		InitializeTopicDetails: &sarama.TopicDetail{
			NumPartitions:     1,
			ReplicationFactor: 1,
		},
	}, logger)
}

// InitializeTopics cria os tópicos que ainda não existem no cluster.
func InitializeTopics(subscriber *kafka.Subscriber, topics ...string) error {
	for _, topic := range topics {
		if err := subscriber.SubscribeInitialize(topic); err != nil {
			return err
		}
	}
	return nil
}
