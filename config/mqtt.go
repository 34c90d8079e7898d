package config

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rotisserie/eris"
)

func NewMQTT(cfg *Config, onConnect mqtt.OnConnectHandler) (mqtt.Client, error) {
	return DialMQTT(cfg.MQTT.Broker, cfg.MQTT.ClientID, onConnect)
}

// DialMQTT connects with auto-reconnect. onConnect, when set, runs after the
// first connect and after every reconnect.
func DialMQTT(broker, clientID string, onConnect mqtt.OnConnectHandler) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)
	if onConnect != nil {
		opts.SetOnConnectHandler(onConnect)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, eris.Wrap(token.Error(), "mqtt connect")
	}
	return client, nil
}
