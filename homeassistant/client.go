package homeassistant

import (
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/victorjacobs/go-smartcomfort/config"
)

// Topics the virtual climate entity lives on.
var (
	TargetCommandTopic      = fmt.Sprintf("%v/climate/target/cmd", config.TopicPrefix)
	targetStateTopic        = fmt.Sprintf("%v/climate/target/state", config.TopicPrefix)
	modeStateTopic          = fmt.Sprintf("%v/climate/mode/state", config.TopicPrefix)
	currentTemperatureTopic = fmt.Sprintf("%v/climate/current", config.TopicPrefix)
	attributesTopic         = fmt.Sprintf("%v/climate/attributes", config.TopicPrefix)
)

type Client struct {
	mqtt mqtt.Client
}

func NewClient(mqtt mqtt.Client) *Client {
	return &Client{
		mqtt: mqtt,
	}
}

// RegisterClimate announces the virtual comfort climate entity. Its target
// temperature is the feels-like target; the current temperature it shows is
// the computed feels-like, not the raw sensor.
func (h *Client) RegisterClimate() error {
	climateConfiguration, _ := json.Marshal(climateConfiguration{
		UniqueId:                "smartcomfort_climate",
		Name:                    "Smart Comfort",
		Modes:                   []string{"off", "dry", "cool", "fan_only"},
		ModeStateTopic:          modeStateTopic,
		TemperatureCommandTopic: TargetCommandTopic,
		TemperatureStateTopic:   targetStateTopic,
		CurrentTemperatureTopic: currentTemperatureTopic,
		JsonAttributesTopic:     attributesTopic,
		MinTemp:                 65,
		MaxTemp:                 85,
		TempStep:                0.5,
		TemperatureUnit:         "F",
	})

	if t := h.mqtt.Publish(config.HomeAssistantPrefix+"/climate/smartcomfort/config", 0, true, climateConfiguration); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	return nil
}

func (h *Client) RegisterSensor(name string, class string, unit string) (string, error) {
	uniqueId := strings.Replace(strings.ToLower(name), " ", "_", -1)

	var stateTopic string
	if class == "" {
		stateTopic = fmt.Sprintf("%v/%v", config.TopicPrefix, uniqueId)
	} else {
		stateTopic = fmt.Sprintf("%v/%v/%v", config.TopicPrefix, class, uniqueId)
	}

	sensorConfiguration, _ := json.Marshal(sensorConfiguration{
		UniqueId:          uniqueId,
		Name:              name,
		DeviceClass:       class,
		StateTopic:        stateTopic,
		UnitOfMeasurement: unit,
	})

	configTopic := fmt.Sprintf("%v/sensor/%v/config", config.HomeAssistantPrefix, uniqueId)

	if t := h.mqtt.Publish(configTopic, 0, true, sensorConfiguration); t.Wait() && t.Error() != nil {
		return "", t.Error()
	}

	return stateTopic, nil
}
