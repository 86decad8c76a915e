/*
 * @module service/report/publisher
 * @description 报告发布器：日志、Kafka、MQTT、Dapr 发布订阅
 * @architecture 策略模式 - 按配置选择发布通道
 * @stateFlow 快照 -> JSON 序列化 -> 发布到目标通道
 * @rules 发布失败返回错误，由调度器记录，不影响下一次调度
 * @dependencies github.com/segmentio/kafka-go, github.com/eclipse/paho.mqtt.golang, github.com/dapr/go-sdk
 * @refs service/report/scheduler.go, service/config/config.go
 */

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"completion-service/service/config"

	dapr "github.com/dapr/go-sdk/client"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/segmentio/kafka-go"
)

// Publisher 报告发布器
type Publisher interface {
	Name() string
	Publish(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// NewPublisher 按配置创建发布器
func NewPublisher(cfg config.ReportConfig) (Publisher, error) {
	switch cfg.Publisher {
	case config.PublisherLog, "":
		return &LogPublisher{}, nil
	case config.PublisherKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case config.PublisherMQTT:
		return NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTTopic)
	case config.PublisherDapr:
		return NewDaprPublisher(cfg.DaprPubSubName, cfg.DaprTopic)
	default:
		return nil, fmt.Errorf("不支持的报告发布方式: %s", cfg.Publisher)
	}
}

// LogPublisher 将报告写入结构化日志
type LogPublisher struct{}

// Name 发布器名称
func (p *LogPublisher) Name() string { return config.PublisherLog }

// Publish 发布报告
func (p *LogPublisher) Publish(ctx context.Context, s *Snapshot) error {
	slog.InfoContext(ctx, "资料完整度报告",
		"report_id", s.ID,
		"total", s.Total,
		"with_photos", s.WithPhotos,
		"with_additional_info", s.WithAdditionalInfo,
		"average_score", s.AverageScore,
		"distribution", s.Distribution)
	return nil
}

// Close 关闭发布器
func (p *LogPublisher) Close() error { return nil }

// KafkaPublisher Kafka 发布器
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher 创建 Kafka 发布器
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Name 发布器名称
func (p *KafkaPublisher) Name() string { return config.PublisherKafka }

// Publish 发布报告，报告ID作为消息键
func (p *KafkaPublisher) Publish(ctx context.Context, s *Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("序列化报告失败: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(s.ID),
		Value: payload,
		Time:  s.GeneratedAt,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("发送Kafka消息失败: %w", err)
	}
	return nil
}

// Close 关闭发布器
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// MQTTPublisher MQTT 发布器
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	qos    byte
}

// NewMQTTPublisher 创建并连接 MQTT 发布器
func NewMQTTPublisher(broker, topic string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(fmt.Sprintf("completion-report-%d", time.Now().UnixNano()))
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		slog.Warn("MQTT连接断开", "broker", broker, "error", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("连接MQTT broker失败: %w", token.Error())
	}
	slog.Info("MQTT报告发布器已连接", "broker", broker, "topic", topic)
	return &MQTTPublisher{client: client, topic: topic, qos: 1}, nil
}

// Name 发布器名称
func (p *MQTTPublisher) Name() string { return config.PublisherMQTT }

// Publish 发布报告
func (p *MQTTPublisher) Publish(ctx context.Context, s *Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("序列化报告失败: %w", err)
	}
	token := p.client.Publish(p.topic, p.qos, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("发布MQTT消息失败: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 关闭发布器
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}

// DaprPublisher 通过 Dapr sidecar 发布到发布订阅组件
type DaprPublisher struct {
	client     dapr.Client
	pubsubName string
	topic      string
}

// NewDaprPublisher 创建 Dapr 发布器
func NewDaprPublisher(pubsubName, topic string) (*DaprPublisher, error) {
	client, err := dapr.NewClient()
	if err != nil {
		return nil, fmt.Errorf("创建Dapr客户端失败: %w", err)
	}
	return &DaprPublisher{client: client, pubsubName: pubsubName, topic: topic}, nil
}

// Name 发布器名称
func (p *DaprPublisher) Name() string { return config.PublisherDapr }

// Publish 发布报告
func (p *DaprPublisher) Publish(ctx context.Context, s *Snapshot) error {
	if err := p.client.PublishEvent(ctx, p.pubsubName, p.topic, s); err != nil {
		return fmt.Errorf("发布Dapr事件失败: %w", err)
	}
	return nil
}

// Close 关闭发布器
func (p *DaprPublisher) Close() error {
	p.client.Close()
	return nil
}
