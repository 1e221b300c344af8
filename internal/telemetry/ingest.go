package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/freshhaul/coldroute/internal/db"
	"github.com/freshhaul/coldroute/internal/models"
)

const (
	locationTopic = "devices/+/location"
	readingsTopic = "devices/+/readings"

	appendTimeout = 5 * time.Second
)

// Ingestor subscribes to the device MQTT topics and appends each message to
// the matching device document's series. Devices publish to
// devices/<name>/location and devices/<name>/readings.
type Ingestor struct {
	devices db.DeviceCollection
	client  mqtt.Client
}

// NewIngestor connects to the broker and returns an ingestor ready to start.
func NewIngestor(brokerURL, clientID string, devices db.DeviceCollection) (*Ingestor, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Ingestor{devices: devices, client: client}, nil
}

// Start subscribes to both device topics.
func (i *Ingestor) Start() error {
	if token := i.client.Subscribe(locationTopic, 1, i.handleLocation); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", locationTopic, token.Error())
	}
	if token := i.client.Subscribe(readingsTopic, 1, i.handleReading); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", readingsTopic, token.Error())
	}
	log.WithFields(log.Fields{"topics": []string{locationTopic, readingsTopic}}).
		Info("Telemetry ingest started")
	return nil
}

// Stop disconnects from the broker.
func (i *Ingestor) Stop() {
	i.client.Disconnect(250)
}

func (i *Ingestor) handleLocation(_ mqtt.Client, msg mqtt.Message) {
	name, ok := deviceNameFromTopic(msg.Topic())
	if !ok {
		return
	}

	var point models.LocationPoint
	if err := json.Unmarshal(msg.Payload(), &point); err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropping malformed location payload")
		return
	}
	if point.Timestamp.IsZero() {
		point.Timestamp = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()
	if err := i.devices.AppendDeviceLocation(ctx, name, point); err != nil {
		log.WithError(err).WithField("device", name).Warn("Failed to append device location")
	}
}

func (i *Ingestor) handleReading(_ mqtt.Client, msg mqtt.Message) {
	name, ok := deviceNameFromTopic(msg.Topic())
	if !ok {
		return
	}

	var reading models.SensorReading
	if err := json.Unmarshal(msg.Payload(), &reading); err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropping malformed sensor payload")
		return
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()
	if err := i.devices.AppendDeviceReading(ctx, name, reading); err != nil {
		log.WithError(err).WithField("device", name).Warn("Failed to append device reading")
	}
}

// deviceNameFromTopic extracts <name> from devices/<name>/<kind>.
func deviceNameFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "devices" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
