package core

import (
	"context"
	"database/sql"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rotisserie/eris"

	"github.com/nandanugg/linewatch/config"
	handler "github.com/nandanugg/linewatch/module/core/internal/handler/http"
	"github.com/nandanugg/linewatch/module/core/internal/handler/subscriber"
	"github.com/nandanugg/linewatch/module/core/internal/handler/ws"
	"github.com/nandanugg/linewatch/module/core/internal/repository/database/sqlstore"
	"github.com/nandanugg/linewatch/module/core/internal/repository/publisher/rabbitmq"
	"github.com/nandanugg/linewatch/module/core/service"
)

type Module struct {
	Monitor    *service.GeofenceMonitor
	Dispatcher *service.AlertDispatcher
	Watcher    *service.Watcher
	Visibility *service.VisibilitySwitch
	hub        *ws.Hub
	handler    *handler.MonitorHandler
	subscriber *subscriber.PositionSubscriber
}

func Build(ctx context.Context, cfg *config.Config, db *sql.DB, amqpConn *amqp.Connection) (*Module, error) {
	journal := sqlstore.NewJournalRepo(db)
	if err := journal.Migrate(ctx); err != nil {
		return nil, eris.Wrap(err, "journal migrate")
	}

	notifier, err := rabbitmq.NewNotificationPublisher(amqpConn, rabbitmq.Options{
		Exchange: cfg.RabbitMQ.Exchange,
		Queue:    cfg.RabbitMQ.Queue,
		Delay:    cfg.Alerts.Deferred.Delay,
		Badge:    cfg.Alerts.Deferred.Badge,
		Sound:    cfg.Alerts.Deferred.Sound,
	})
	if err != nil {
		return nil, eris.Wrap(err, "notification publisher")
	}

	hub := ws.NewHub()
	visibility := service.NewVisibilitySwitch(cfg.InitialVisibility())

	monitor := service.NewGeofenceMonitor(cfg.Geofence.RadiusMeters)
	dispatcher := service.NewAlertDispatcher(visibility, monitor, cfg.AlertTexts())
	sink := &service.RoutingSink{InApp: hub, Deferred: notifier}
	watcher := service.NewWatcher(monitor, dispatcher, visibility, sink, journal, hub)

	return &Module{
		Monitor:    monitor,
		Dispatcher: dispatcher,
		Watcher:    watcher,
		Visibility: visibility,
		hub:        hub,
		handler:    handler.NewMonitorHandler(watcher, visibility, cfg.Geofence.MapSpanDegrees),
		subscriber: subscriber.NewPositionSubscriber(cfg.MQTT.Topic, byte(cfg.MQTT.QoS), watcher),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
	m.hub.Register(r)
}

// OnMQTTConnect subscribes the position feed. Install it as the client's
// connect handler so reconnects subscribe again.
func (m *Module) OnMQTTConnect(client mqtt.Client) {
	m.subscriber.OnConnect(client)
}
