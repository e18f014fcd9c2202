package events

import (
	"encoding/json"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const publishQueueSize = 256

// NewProducer builds the shared sync producer. Acks from all ISRs, snappy
// compression, hash partitioning so one channel's events stay ordered within
// a partition.
func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "signaling-service"

	return sarama.NewSyncProducer(brokers, config)
}

// KafkaSink publishes events through a buffered queue drained by a single
// worker, so the hub never waits on a broker round trip. A full queue drops
// the event and counts it.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string

	queue chan Event
	done  chan struct{}

	// mu serializes Publish against the queue close in Close.
	mu        sync.RWMutex
	closed    int32
	closeOnce sync.Once

	dropped int64
	log     *zap.Logger
}

func NewKafkaSink(producer sarama.SyncProducer, topic string, log *zap.Logger) *KafkaSink {
	s := &KafkaSink{
		producer: producer,
		topic:    topic,
		queue:    make(chan Event, publishQueueSize),
		done:     make(chan struct{}),
		log:      log,
	}
	go s.run()
	return s
}

func (s *KafkaSink) run() {
	defer close(s.done)

	for ev := range s.queue {
		payload, err := json.Marshal(ev)
		if err != nil {
			s.log.Warn("event marshal failed", zap.String("type", ev.Type), zap.Error(err))
			continue
		}

		msg := &sarama.ProducerMessage{
			Topic: s.topic,
			Key:   sarama.StringEncoder(strconv.FormatUint(uint64(ev.ChannelID), 10)),
			Value: sarama.ByteEncoder(payload),
		}
		if _, _, err := s.producer.SendMessage(msg); err != nil {
			s.log.Warn("event publish failed",
				zap.String("type", ev.Type),
				zap.Uint("channel_id", ev.ChannelID),
				zap.Error(err))
		}
	}
}

func (s *KafkaSink) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if atomic.LoadInt32(&s.closed) == 1 {
		return
	}

	select {
	case s.queue <- ev:
	default:
		atomic.AddInt64(&s.dropped, 1)
		s.log.Warn("event queue full, dropping", zap.String("type", ev.Type))
	}
}

// Dropped reports how many events were shed on a full queue.
func (s *KafkaSink) Dropped() int64 {
	return atomic.LoadInt64(&s.dropped)
}

// Close drains the queue, stops the worker, and closes the producer.
func (s *KafkaSink) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		atomic.StoreInt32(&s.closed, 1)
		close(s.queue)
		s.mu.Unlock()
	})
	<-s.done
	return s.producer.Close()
}
