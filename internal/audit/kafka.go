// Package audit publishes presence transitions to Kafka for downstream
// consumers (analytics, session history). Publishing is best-effort and
// never blocks the signaling path.
package audit

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
)

// Transition is the audit record emitted for every presence change.
type Transition struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
	At     int64  `json:"at"`
}

type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "presence-service"

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &Publisher{producer: producer, topic: topic}, nil
}

// PublishTransition records a single online/offline transition. Keyed by
// user so transitions for one user stay ordered within a partition.
func (p *Publisher) PublishTransition(userID, status string) error {
	payload, err := json.Marshal(Transition{
		UserID: userID,
		Status: status,
		At:     time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(userID),
		Value: sarama.ByteEncoder(payload),
	})
	return err
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
