package main

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Location is the payload for devices/<name>/location.
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// Reading is the payload for devices/<name>/readings. Values mimic a
// refrigerated cargo hold: cool, humid, with ethylene building up as produce
// ripens.
type Reading struct {
	Humidity    float64   `json:"humidity"`
	Temperature float64   `json:"temperature"`
	Ethylene    float64   `json:"ethylene"`
	Timestamp   time.Time `json:"timestamp"`
}

// Cities for realistic delivery origins
var cities = []Location{
	{Latitude: 6.9271, Longitude: 79.8612},  // Colombo
	{Latitude: 7.2906, Longitude: 80.6337},  // Kandy
	{Latitude: 6.0535, Longitude: 80.2210},  // Galle
	{Latitude: 9.6615, Longitude: 80.0255},  // Jaffna
	{Latitude: 8.3114, Longitude: 80.4037},  // Anuradhapura
	{Latitude: 6.9847, Longitude: 81.0564},  // Badulla
	{Latitude: 7.4818, Longitude: 80.3609},  // Kurunegala
	{Latitude: 6.7056, Longitude: 80.3847},  // Ratnapura
}

type deviceState struct {
	name        string
	position    Location
	heading     float64 // radians
	speedKmh    float64
	temperature float64
	humidity    float64
	ethylene    float64
}

func newDeviceState(name string) *deviceState {
	base := cities[rand.Intn(len(cities))]
	return &deviceState{
		name:        name,
		position:    jitterLocation(base, 500),
		heading:     rand.Float64() * 2 * math.Pi,
		speedKmh:    30 + rand.Float64()*30,
		temperature: 2 + rand.Float64()*4,
		humidity:    85 + rand.Float64()*10,
		ethylene:    0.1 + rand.Float64()*0.4,
	}
}

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Latitude*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return Location{Latitude: base.Latitude + dLat, Longitude: base.Longitude + dLon}
}

// step advances the device along its heading with small noise on speed and
// direction, and drifts the hold readings.
func (s *deviceState) step(tick time.Duration) {
	s.speedKmh += (rand.Float64()*2 - 1) * 1.5
	s.speedKmh = clamp(s.speedKmh, 15, 80)
	s.heading += (rand.Float64()*2 - 1) * 0.2

	km := s.speedKmh * (tick.Seconds() / 3600.0)
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(s.position.Latitude*math.Pi/180)
	s.position.Latitude += (km * 1000 * math.Cos(s.heading)) / latMetersPerDeg
	s.position.Longitude += (km * 1000 * math.Sin(s.heading)) / lonMetersPerDeg

	s.temperature = clamp(s.temperature+(rand.Float64()*2-1)*0.3, 0, 12)
	s.humidity = clamp(s.humidity+(rand.Float64()*2-1)*1.0, 60, 100)
	s.ethylene = clamp(s.ethylene+rand.Float64()*0.02, 0, 5)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *deviceState) location() Location {
	return Location{Latitude: s.position.Latitude, Longitude: s.position.Longitude, Timestamp: time.Now()}
}

func (s *deviceState) reading() Reading {
	return Reading{
		Humidity:    s.humidity,
		Temperature: s.temperature,
		Ethylene:    s.ethylene,
		Timestamp:   time.Now(),
	}
}

func publishJSON(client mqtt.Client, topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("Failed to marshal payload")
		return
	}
	if token := client.Publish(topic, 1, false, data); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).WithField("topic", topic).Error("Failed to publish")
	}
}

func simulateDevice(client mqtt.Client, s *deviceState, interval time.Duration, done <-chan struct{}) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			s.step(interval)
			publishJSON(client, "devices/"+s.name+"/location", s.location())
			publishJSON(client, "devices/"+s.name+"/readings", s.reading())
			log.WithFields(log.Fields{
				"device":      s.name,
				"lat":         s.position.Latitude,
				"lon":         s.position.Longitude,
				"temperature": s.temperature,
			}).Debug("Published telemetry")
		}
	}
}

func main() {
	brokerURL := os.Getenv("MQTT_BROKER_URL")
	if brokerURL == "" {
		brokerURL = "tcp://localhost:1883"
	}

	deviceCount := 5
	if v := os.Getenv("DEVICE_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			deviceCount = n
		}
	}

	interval := 5 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID("coldroute-simulator").
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Fatal("Failed to connect to MQTT broker")
	}
	defer client.Disconnect(250)

	log.WithFields(log.Fields{
		"broker":   brokerURL,
		"devices":  deviceCount,
		"interval": interval,
	}).Info("Starting device simulation")

	done := make(chan struct{})
	for i := 0; i < deviceCount; i++ {
		state := newDeviceState(fmt.Sprintf("sim-device-%d", i+1))
		go simulateDevice(client, state, interval, done)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(done)
	log.Info("Simulation stopped")
}
