package adapter

import (
	"testing"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSaramaSubscriberConfig(t *testing.T) {
	cfg := NewSaramaSubscriberConfig("servici")

	assert.Equal(t, "servici", cfg.ClientID)
	assert.Equal(t, sarama.OffsetOldest, cfg.Consumer.Offsets.Initial)
	assert.True(t, cfg.Consumer.Return.Errors)
	assert.Equal(t, sarama.V1_0_0_0, cfg.Version)
	require.NoError(t, cfg.Validate())
}

func TestNewSaramaReplySubscriberConfigStartsAtNewest(t *testing.T) {
	cfg := NewSaramaReplySubscriberConfig("servici")

	assert.Equal(t, sarama.OffsetNewest, cfg.Consumer.Offsets.Initial)
	assert.True(t, cfg.Consumer.Return.Errors)
	require.NoError(t, cfg.Validate())

	// a configuração de consulta continua lendo desde o início
	assert.Equal(t, sarama.OffsetOldest, NewSaramaSubscriberConfig("servici").Consumer.Offsets.Initial)
}

func TestConfigValidation(t *testing.T) {
	logger := watermill.NopLogger{}

	_, err := NewPublisher(Config{}, logger)
	assert.ErrorContains(t, err, "broker")

	_, err = NewSubscriber(Config{Brokers: []string{"localhost:9092"}}, logger)
	assert.ErrorContains(t, err, "consumer group")

	_, err = NewReplySubscriber(Config{Brokers: []string{"localhost:9092"}}, logger)
	assert.ErrorContains(t, err, "consumer group")
}
