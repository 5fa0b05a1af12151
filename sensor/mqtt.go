package sensor

import (
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/victorjacobs/go-smartcomfort/comfort"
)

// Readings older than this are treated as missing rather than decided on.
const maxReadingAge = 5 * time.Minute

// MQTTSource tracks a temperature and a humidity state topic and keeps the
// latest pair. Home Assistant publishes "unavailable"/"unknown" on those
// topics when a sensor drops out; that clears the value here.
type MQTTSource struct {
	temperatureTopic string
	humidityTopic    string
	onUpdate         func()

	mu          sync.Mutex
	temperature *float64
	humidity    *float64
	taken       time.Time
	now         func() time.Time
}

func NewMQTTSource(temperatureTopic, humidityTopic string, onUpdate func()) *MQTTSource {
	return &MQTTSource{
		temperatureTopic: temperatureTopic,
		humidityTopic:    humidityTopic,
		onUpdate:         onUpdate,
		now:              time.Now,
	}
}

// Subscribe sets up the topic subscriptions. Call from the MQTT OnConnect
// handler so they survive reconnects.
func (s *MQTTSource) Subscribe(client mqtt.Client) {
	if t := client.Subscribe(s.temperatureTopic, 0, func(client mqtt.Client, msg mqtt.Message) {
		s.update(&s.temperature, string(msg.Payload()))
	}); t.Wait() && t.Error() != nil {
		log.Printf("MQTT receive error: %v", t.Error())
	}

	if t := client.Subscribe(s.humidityTopic, 0, func(client mqtt.Client, msg mqtt.Message) {
		s.update(&s.humidity, string(msg.Payload()))
	}); t.Wait() && t.Error() != nil {
		log.Printf("MQTT receive error: %v", t.Error())
	}
}

func (s *MQTTSource) update(field **float64, payload string) {
	s.mu.Lock()

	payload = strings.TrimSpace(payload)
	if value, err := strconv.ParseFloat(payload, 64); err != nil {
		if payload != "unavailable" && payload != "unknown" {
			log.Printf("Unparsable sensor payload: %q", payload)
		}
		*field = nil
	} else {
		*field = &value
		s.taken = s.now()
	}

	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate()
	}
}

func (s *MQTTSource) Current() (comfort.Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.temperature == nil || s.humidity == nil {
		return comfort.Reading{}, false
	}
	if s.now().Sub(s.taken) > maxReadingAge {
		return comfort.Reading{}, false
	}

	return comfort.Reading{
		Temperature: *s.temperature,
		Humidity:    *s.humidity,
		Taken:       s.taken,
	}, true
}

func (s *MQTTSource) EntityIDs() (string, string) {
	return s.temperatureTopic, s.humidityTopic
}
