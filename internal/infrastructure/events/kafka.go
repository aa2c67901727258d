package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/application/ports"
	"github.com/adanjr/inventory-management-sub000/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// MessageWriter lo que KafkaPublisher necesita de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher serializa eventos a JSON y los escribe en un topic.
// La clave del mensaje es la clave del evento (ID de venta o movimiento).
type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
}

// NewKafkaPublisher crea un writer asíncrono sobre brokers y topic: WriteMessages encola
// y vuelve sin esperar al broker, y las fallas de entrega se registran en log.
func NewKafkaPublisher(brokers []string, topic string, log *logger.Logger) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(newAsyncWriter(brokers, topic, log))
}

func newAsyncWriter(brokers []string, topic string, log *logger.Logger) *kafka.Writer {
	if log == nil {
		log = logger.Nop()
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion:   deliveryReporter(log),
	}
}

// deliveryReporter registra cada mensaje de un lote que el broker no aceptó.
func deliveryReporter(log *logger.Logger) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err == nil {
			return
		}
		for i := range msgs {
			log.Warn().Err(err).
				Str("event", headerCarrier{msg: &msgs[i]}.Get("event_type")).
				Str("key", string(msgs[i].Key)).
				Msg("evento no entregado")
		}
	}
}

// NewKafkaPublisherWithWriter permite inyectar el writer.
func NewKafkaPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second}
}

// Publish escribe el evento. El contexto de traza viaja en los headers del mensaje.
func (p *KafkaPublisher) Publish(ctx context.Context, ev ports.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", ev.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.Key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{msg: &msg})

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publicar evento %s: %w", ev.Type, err)
	}
	return nil
}

// Close libera el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// headerCarrier adapta los headers de kafka.Message a propagation.TextMapCarrier.
type headerCarrier struct {
	msg *kafka.Message
}

var _ propagation.TextMapCarrier = headerCarrier{}

func (c headerCarrier) Get(key string) string {
	for _, h := range c.msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range c.msg.Headers {
		if h.Key == key {
			c.msg.Headers[i].Value = []byte(value)
			return
		}
	}
	c.msg.Headers = append(c.msg.Headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.msg.Headers))
	for _, h := range c.msg.Headers {
		keys = append(keys, h.Key)
	}
	return keys
}
