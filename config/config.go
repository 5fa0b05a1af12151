package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/victorjacobs/go-smartcomfort/comfort"
)

const HomeAssistantPrefix = "homeassistant"
const TopicPrefix = "smartcomfort"

const (
	DefaultTargetFeelsLike = 72.0
	DefaultTargetHumidity  = 45.0
)

type Configuration struct {
	Sensor  Sensor  `json:"sensor"`
	Climate Climate `json:"climate"`
	Targets Targets `json:"targets"`
	Mqtt    Mqtt    `json:"mqtt"`
}

// Sensor selects the reading source: either a pair of MQTT state topics or
// a serial port with a DHT bridge on it.
type Sensor struct {
	TemperatureTopic string `json:"temperature_topic"`
	HumidityTopic    string `json:"humidity_topic"`
	SerialPort       string `json:"serial_port"`
}

type Climate struct {
	EntityID          string   `json:"entity_id"`
	ModeCommandTopic  string   `json:"mode_command_topic"`
	ModeStateTopic    string   `json:"mode_state_topic"`
	AvailabilityTopic string   `json:"availability_topic"`
	Modes             []string `json:"modes"`
}

type Targets struct {
	FeelsLike float64 `json:"feels_like"`
	Humidity  float64 `json:"humidity"`
}

type Mqtt struct {
	IpAddress string `json:"ip_address" envconfig:"MQTT_IP_ADDRESS"`
	Username  string `json:"username" envconfig:"MQTT_USERNAME"`
	Password  string `json:"password" envconfig:"MQTT_PASSWORD"`
}

func LoadConfiguration(filename string) (*Configuration, error) {
	// A .env next to the binary may carry MQTT credentials; absence is fine.
	_ = godotenv.Load()

	var file *os.File
	var err error
	if file, err = os.Open(filename); err != nil {
		return nil, err
	}

	defer file.Close()
	decoder := json.NewDecoder(file)
	configuration := &Configuration{}
	if err := decoder.Decode(configuration); err != nil {
		return nil, err
	}

	if err := envconfig.Process("", &configuration.Mqtt); err != nil {
		return nil, err
	}

	configuration.applyDefaults()

	if err := configuration.Validate(); err != nil {
		return nil, err
	}

	return configuration, nil
}

func (c *Configuration) applyDefaults() {
	if c.Targets.FeelsLike == 0 {
		c.Targets.FeelsLike = DefaultTargetFeelsLike
	}
	if c.Targets.Humidity == 0 {
		c.Targets.Humidity = DefaultTargetHumidity
	}
	if len(c.Climate.Modes) == 0 {
		c.Climate.Modes = []string{"off", "dry", "cool", "fan_only"}
	}
}

func (c *Configuration) Validate() error {
	if c.Targets.Humidity < 30 || c.Targets.Humidity > 70 {
		return fmt.Errorf("targets.humidity %v: %w", c.Targets.Humidity, comfort.ErrHumidityTargetInvalid)
	}
	if c.Targets.FeelsLike < 65 || c.Targets.FeelsLike > 85 {
		return fmt.Errorf("targets.feels_like %v outside 65-85°F", c.Targets.FeelsLike)
	}

	hasTopics := c.Sensor.TemperatureTopic != "" && c.Sensor.HumidityTopic != ""
	hasSerial := c.Sensor.SerialPort != ""
	if hasTopics == hasSerial {
		return fmt.Errorf("sensor needs either temperature_topic and humidity_topic or serial_port")
	}

	if c.Climate.ModeCommandTopic == "" {
		return fmt.Errorf("climate.mode_command_topic is required")
	}

	return nil
}

func (m *Mqtt) ClientOptions() *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%v:1883", m.IpAddress)).
		SetUsername(m.Username).
		SetPassword(m.Password).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(client mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		}).
		SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
			log.Printf("MQTT reconnecting")
		})
}
