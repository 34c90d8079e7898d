package subscriber

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nandanugg/linewatch/module/core/domain"
	"github.com/nandanugg/linewatch/module/core/service"
)

const DefaultTopic = "/linewatch/position"

type positionHandler interface {
	HandlePosition(ctx context.Context, pos domain.Position) service.Outcome
}

type positionMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

type topicSubscriber interface {
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
}

type PositionSubscriber struct {
	topic   string
	qos     byte
	watcher positionHandler
}

func NewPositionSubscriber(topic string, qos byte, watcher positionHandler) *PositionSubscriber {
	if topic == "" {
		topic = DefaultTopic
	}
	return &PositionSubscriber{
		topic:   topic,
		qos:     qos,
		watcher: watcher,
	}
}

// OnConnect is installed as the client's connect handler. A clean-session
// reconnect drops every subscription, so the topic is subscribed again each
// time the connection comes up.
func (s *PositionSubscriber) OnConnect(client mqtt.Client) {
	if err := s.subscribe(client); err != nil {
		zap.L().Error("subscriber: subscribe failed", zap.String("topic", s.topic), zap.Error(err))
	}
}

func (s *PositionSubscriber) subscribe(client topicSubscriber) error {
	token := client.Subscribe(s.topic, s.qos, s.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		return eris.Wrapf(err, "subscriber: subscribe %s", s.topic)
	}
	zap.L().Info("subscriber: listening for positions", zap.String("topic", s.topic))
	return nil
}

func (s *PositionSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw positionMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		zap.L().Warn("subscriber: invalid position message", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	if err := validatePositionMessage(&raw); err != nil {
		zap.L().Warn("subscriber: validation error", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	pos := domain.Position{
		Lat:       raw.Latitude,
		Lon:       raw.Longitude,
		Accuracy:  raw.Accuracy,
		Timestamp: time.Unix(raw.Timestamp, 0),
	}

	out := s.watcher.HandlePosition(context.Background(), pos)
	if out.Event != nil {
		zap.L().Debug("subscriber: sample produced transition",
			zap.String("direction", string(out.Event.Direction)),
			zap.Bool("alerted", out.Request != nil),
		)
	}
}

func validatePositionMessage(msg *positionMessage) error {
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return eris.New("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return eris.New("longitude: must be between -180 and 180")
	}
	if msg.Accuracy < 0 {
		return eris.New("accuracy: must not be negative")
	}
	if msg.Timestamp <= 0 {
		return eris.New("timestamp: must be positive")
	}
	return nil
}
